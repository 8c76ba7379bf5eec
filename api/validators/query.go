package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
)

// QueryPositiveInt reads an optional integer query parameter. Missing,
// non-numeric and non-positive values all yield defaultVal.
func QueryPositiveInt(r *http.Request, key string, defaultVal int) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil || value <= 0 {
		return defaultVal
	}
	return value
}

// ParseQueryBool reads an optional boolean query parameter.
func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.Field(key, key+" must be true or false")
	}
	return value, nil
}

// ParsePathID parses a positive integer route parameter.
func ParsePathID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.Field(name, name+" must be a positive integer")
	}
	return id, nil
}
