package util

import "github.com/oklog/ulid/v2"

// NewULID returns a fresh ULID string. ULIDs sort lexicographically by
// creation time, which keeps index pages warm on the ID columns.
func NewULID() string {
	return ulid.Make().String()
}
