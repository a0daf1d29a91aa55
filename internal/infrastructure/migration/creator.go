package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
	// versionWidth zero-pads sequence numbers so names sort lexically
	versionWidth = 6
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     uint
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next sequential up/down pair into dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, next, slug)
	mf := &MigrationFile{
		Version:     next,
		Name:        slug,
		Description: description,
		UpPath:      filepath.Join(dir, base+upSuffix),
		DownPath:    filepath.Join(dir, base+downSuffix),
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigrationFile(mf.UpPath, mf, timestamp, false); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, mf, timestamp, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path string, mf *MigrationFile, timestamp string, rollback bool) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return fileTemplate.Execute(f, struct {
		Name        string
		Description string
		Timestamp   string
		Rollback    bool
	}{mf.Name, mf.Description, timestamp, rollback})
}

// sanitizeName lowercases name and joins its words with single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// Entry is one migration found in a source
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// String returns the file base name, e.g. 000001_init_schema
func (e Entry) String() string {
	return fmt.Sprintf("%0*d_%s", versionWidth, e.Version, e.Name)
}

// ListMigrations returns the migrations at the root of source ordered by
// version. Files that do not follow NNNNNN_name.up.sql are ignored.
func ListMigrations(source fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(source, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make(map[string]bool, len(files))
	for _, f := range files {
		if !f.IsDir() {
			names[f.Name()] = true
		}
	}

	entries := make([]Entry, 0)
	for file := range names {
		base, ok := strings.CutSuffix(file, upSuffix)
		if !ok {
			continue
		}
		num, slug, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Version: uint(version),
			Name:    slug,
			HasDown: names[base+downSuffix],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}
