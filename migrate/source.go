package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

// fileNamePattern matches migration file names: {id}-{name}.{up|down}.sql,
// where id is the fixed-width numeric migration ID.
var fileNamePattern = regexp.MustCompile(`^(\d{14})-([a-zA-Z0-9_-]+)\.(up|down)\.sql$`)

// Source is a read-only collection of migrations loaded from a filesystem.
// It works with both on-disk directories (os.DirFS) and embedded filesystems.
type Source struct {
	migrations []Migration
	byID       map[ID]Migration
}

// LoadSource reads migration files from the root of fsys and pairs each up
// script with its optional down script. Files that don't match the
// {id}-{name}.{up|down}.sql naming convention are an error, as are duplicate
// IDs, mismatched names between an ID's up and down files, and IDs without an
// up script.
func LoadSource(fsys fs.FS) (*Source, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	type scripts struct {
		name     string
		up, down string
		hasUp    bool
	}
	parsed := map[ID]*scripts{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		match := fileNamePattern.FindStringSubmatch(fileName)
		if match == nil {
			return nil, fmt.Errorf("invalid migration file name %q: expected {id}-{name}.{up|down}.sql", fileName)
		}

		id, err := ParseID(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration file name %q: %w", fileName, err)
		}
		name, direction := match[2], match[3]

		content, err := fs.ReadFile(fsys, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed reading migration file %q: %w", fileName, err)
		}
		sqlText := strings.TrimSpace(string(content))
		if sqlText == "" {
			return nil, fmt.Errorf("migration file %q is empty", fileName)
		}

		s, exists := parsed[id]
		if !exists {
			s = &scripts{name: name}
			parsed[id] = s
		} else if s.name != name {
			return nil, fmt.Errorf("migration %s has mismatched names: %q and %q", id, s.name, name)
		}

		switch direction {
		case "up":
			if s.hasUp {
				return nil, fmt.Errorf("duplicate up migration for ID %s", id)
			}
			s.up = sqlText
			s.hasUp = true
		case "down":
			if s.down != "" {
				return nil, fmt.Errorf("duplicate down migration for ID %s", id)
			}
			s.down = sqlText
		}
	}

	src := &Source{byID: make(map[ID]Migration, len(parsed))}
	for id, s := range parsed {
		if !s.hasUp {
			return nil, fmt.Errorf("migration %s has a down script but no up script", id)
		}
		m := Migration{ID: id, Name: s.name, UpSQL: s.up, DownSQL: s.down}
		src.migrations = append(src.migrations, m)
		src.byID[id] = m
	}

	sort.Slice(src.migrations, func(i, j int) bool {
		return src.migrations[i].ID.Less(src.migrations[j].ID)
	})

	return src, nil
}

// Migrations returns all migrations in ascending ID order.
func (s *Source) Migrations() []Migration {
	return s.migrations
}

// Get returns the migration with the given ID, if the source contains it.
func (s *Source) Get(id ID) (Migration, bool) {
	m, ok := s.byID[id]
	return m, ok
}
