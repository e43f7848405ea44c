package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Dialects lists the per-driver migration directories under the sql root
var Dialects = []string{"postgres", "sqlite"}

const migrationUpTemplate = `-- Migration: {{.Name}} ({{.Dialect}})
-- Created: {{.Timestamp}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} ({{.Dialect}}, rollback)
-- Created: {{.Timestamp}}

`

// MigrationFile is one up/down pair created for a dialect
type MigrationFile struct {
	Version   uint
	Name      string
	Dialect   string
	Timestamp string
	UpPath    string
	DownPath  string
}

// CreateMigration adds an empty up/down pair to every dialect directory under sqlRoot.
// All dialects share the next sequence number so their versions stay aligned.
func CreateMigration(sqlRoot, name string) ([]MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	var latest uint
	for _, dialect := range Dialects {
		versions, err := ListMigrations(filepath.Join(sqlRoot, dialect))
		if err != nil {
			return nil, err
		}
		if n := len(versions); n > 0 && versions[n-1].Version > latest {
			latest = versions[n-1].Version
		}
	}
	version := latest + 1
	timestamp := time.Now().Format(time.RFC3339)

	created := make([]MigrationFile, 0, len(Dialects))
	for _, dialect := range Dialects {
		dir := filepath.Join(sqlRoot, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}
		fileBase := fmt.Sprintf("%06d_%s", version, base)
		mf := MigrationFile{
			Version:   version,
			Name:      name,
			Dialect:   dialect,
			Timestamp: timestamp,
			UpPath:    filepath.Join(dir, fileBase+".up.sql"),
			DownPath:  filepath.Join(dir, fileBase+".down.sql"),
		}
		if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
			return nil, fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			return nil, fmt.Errorf("failed to create down migration: %w", err)
		}
		created = append(created, mf)
	}
	return created, nil
}

func createMigrationFile(path, tmplContent string, data MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName lowercases name and keeps [a-z0-9] separated by single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			if s := b.String(); s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Migration identifies an up migration present in a directory
type Migration struct {
	Version uint
	Name    string
}

// ListMigrations returns the up migrations of dir ordered by version.
// A missing directory has no migrations.
func ListMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".up.sql"), "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		migrations = append(migrations, Migration{Version: uint(version), Name: rest})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}
