package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONText is a custom type for JSON payloads stored in CLOB columns.
// Oracle drivers expect string values for CLOBs, so Value always returns
// a string.
type JSONText json.RawMessage

// Value implements the driver.Valuer interface.
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("JSONText Value: invalid JSON: %s", string(j))
	}
	return string(j), nil
}

// Scan implements the sql.Scanner interface.
func (j *JSONText) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytesToParse []byte

	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("JSONText Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*j = nil
		return nil
	}

	// Copy the driver's buffer; it may be reused after Scan returns.
	*j = append(JSONText(nil), bytesToParse...)
	return nil
}

// IsEmpty reports whether the column held no JSON payload.
func (j JSONText) IsEmpty() bool {
	return len(j) == 0
}
