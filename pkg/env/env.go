// Package env reads the few settings needed before config.Load runs, such as
// the log format of the bootstrap logger.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// OneOf is Get restricted to allowed values, compared case-insensitively.
// Anything else yields fallback.
func OneOf(key, fallback string, allowed ...string) string {
	val := strings.ToLower(Get(key, fallback))
	for _, candidate := range allowed {
		if val == candidate {
			return candidate
		}
	}
	return fallback
}
