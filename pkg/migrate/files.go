package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

const versionLayout = "20060102150405"

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	unsafeRe   = regexp.MustCompile(`[^a-z0-9_]+`)
)

// File is one goose SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// ListFiles returns the migrations in dir ordered by version. Every .sql file
// must be named <YYYYMMDDHHMMSS>_<name>.sql, carry both goose sections and
// close each StatementBegin it opens.
func ListFiles(dir string) ([]File, error) {
	if dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "migrations dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("read migrations dir %q", dir))
	}

	byVersion := map[int64]string{}
	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		file, err := inspect(dir, entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := byVersion[file.Version]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate migration version %d in %q and %q", file.Version, prev, entry.Name()))
		}
		byVersion[file.Version] = entry.Name()
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks every migration in dir without touching a database.
func ValidateDir(dir string) error {
	_, err := ListFiles(dir)
	return err
}

func inspect(dir, name string) (File, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return File{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return File{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse migration version")
	}

	path := filepath.Join(dir, name)
	body, err := os.ReadFile(path)
	if err != nil {
		return File{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("read migration %q", path))
	}
	text := string(body)
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(text, marker) {
			return File{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("migration %q missing %q", name, marker))
		}
	}
	if strings.Count(text, "-- +goose StatementBegin") != strings.Count(text, "-- +goose StatementEnd") {
		return File{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("migration %q has unbalanced statement blocks", name))
	}
	return File{Version: version, Name: m[2], Path: path}, nil
}

// CreateSQLMigration writes an empty migration named after name. The new
// version is the current UTC time, bumped past the newest existing file so
// goose never sees it out of order.
func CreateSQLMigration(dir, name string) (string, error) {
	safe := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	safe = strings.Trim(unsafeRe.ReplaceAllString(safe, "_"), "_")
	if safe == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("migration name %q is empty once sanitized", name))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("mkdir %q", dir))
	}

	existing, err := ListFiles(dir)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	if n := len(existing); n > 0 {
		latest, err := time.Parse(versionLayout, strconv.FormatInt(existing[n-1].Version, 10))
		if err == nil && !now.After(latest) {
			now = latest.Add(time.Second)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), safe))
	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`, safe)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("write migration %q", path))
	}
	return path, nil
}
