package cache

import "strings"

// GlobalKeyPrefix namespaces every Redis key this application writes.
const GlobalKeyPrefix = "surveygrader"

// GenerateCacheKey builds a colon-delimited Redis key of the form
// prefix:service:object:identifier. Any extra params are joined with
// "_" and appended as one final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	parts := []string{GlobalKeyPrefix, serviceName, objectType, identifier}
	if len(paramsKey) > 0 {
		parts = append(parts, strings.Join(paramsKey, "_"))
	}
	return strings.Join(parts, ":")
}
