package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks filenames, version uniqueness and goose markers in one
// dialect directory.
func ValidateDir(dir string) error {
	_, err := scanVersions(dir)
	return err
}

// ValidateDialects validates every dialect directory under base and requires
// them to carry the same versions.
func ValidateDialects(base string) error {
	var (
		reference     map[string]string
		referenceName string
	)
	for _, dialect := range Dialects {
		dir, err := DirFor(base, dialect)
		if err != nil {
			return err
		}
		versions, err := scanVersions(dir)
		if err != nil {
			return fmt.Errorf("%s: %w", dialect, err)
		}
		if reference == nil {
			reference, referenceName = versions, dialect
			continue
		}
		if missing := diffVersions(reference, versions); len(missing) > 0 {
			return fmt.Errorf("%s is missing versions present in %s: %s", dialect, referenceName, strings.Join(missing, ", "))
		}
		if extra := diffVersions(versions, reference); len(extra) > 0 {
			return fmt.Errorf("%s is missing versions present in %s: %s", referenceName, dialect, strings.Join(extra, ", "))
		}
	}
	return nil
}

// scanVersions returns version -> filename for the SQL files in dir.
func scanVersions(dir string) (map[string]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := versions[m[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		if err := checkMarkers(filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func checkMarkers(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", path, err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(b), marker) {
			return fmt.Errorf("migration %q missing %q", filepath.Base(path), marker)
		}
	}
	return nil
}

func diffVersions(have, other map[string]string) []string {
	var missing []string
	for version, name := range have {
		if _, ok := other[version]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
