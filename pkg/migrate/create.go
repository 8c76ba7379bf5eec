package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// Dialects lists the migration subdirectories kept in lockstep.
var Dialects = []string{"postgres", "sqlite"}

const versionLayout = "20060102150405"

// CreateSQLMigration writes one goose file per dialect under base, all sharing
// the same version so the schemas stay aligned:
//
//	<base>/<dialect>/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(base string, name string) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(versionLayout), safe)

	paths := make([]string, 0, len(Dialects))
	for _, dialect := range Dialects {
		dir, err := DirFor(base, dialect)
		if err != nil {
			return paths, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		full := filepath.Join(dir, filename)
		if _, err := os.Stat(full); err == nil {
			return paths, fmt.Errorf("migration already exists: %s", full)
		}
		if err := os.WriteFile(full, []byte(migrationTemplate(dialect, safe)), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", full, err)
		}
		paths = append(paths, full)
	}
	return paths, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func migrationTemplate(dialect, name string) string {
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s: %[2]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- %[1]s: revert %[2]s
-- +goose StatementEnd
`, dialect, name)
}
