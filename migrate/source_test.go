package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestLoadSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  map[string]string
		expIDs []ID
		expErr string
	}{
		{
			name: "ok/up_and_down_pairs",
			files: map[string]string{
				"00000000000002-add_email.up.sql":    "ALTER TABLE users ADD COLUMN email TEXT;",
				"00000000000002-add_email.down.sql":  "ALTER TABLE users DROP COLUMN email;",
				"00000000000001-create_users.up.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
			},
			expIDs: []ID{"00000000000001", "00000000000002"},
		},
		{
			name: "ok/up_only",
			files: map[string]string{
				"20250101120000-init.up.sql": "CREATE TABLE t (x INTEGER);",
			},
			expIDs: []ID{"20250101120000"},
		},
		{
			name:   "ok/empty_dir",
			files:  map[string]string{},
			expIDs: nil,
		},
		{
			name: "err/invalid_file_name",
			files: map[string]string{
				"001_init.sql": "CREATE TABLE t (x INTEGER);",
			},
			expErr: `invalid migration file name "001_init.sql": expected {id}-{name}.{up|down}.sql`,
		},
		{
			name: "err/short_id",
			files: map[string]string{
				"001-init.up.sql": "CREATE TABLE t (x INTEGER);",
			},
			expErr: `invalid migration file name "001-init.up.sql": expected {id}-{name}.{up|down}.sql`,
		},
		{
			name: "err/empty_file",
			files: map[string]string{
				"00000000000001-init.up.sql": "  \n\t",
			},
			expErr: `migration file "00000000000001-init.up.sql" is empty`,
		},
		{
			name: "err/name_mismatch",
			files: map[string]string{
				"00000000000001-init.up.sql":    "CREATE TABLE t (x INTEGER);",
				"00000000000001-start.down.sql": "DROP TABLE t;",
			},
			expErr: `migration 00000000000001 has mismatched names`,
		},
		{
			name: "err/down_without_up",
			files: map[string]string{
				"00000000000001-init.down.sql": "DROP TABLE t;",
			},
			expErr: `migration 00000000000001 has a down script but no up script`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := LoadSource(sourceFS(tt.files))
			if tt.expErr != "" {
				require.ErrorContains(t, err, tt.expErr)
				return
			}

			require.NoError(t, err)
			migrations := src.Migrations()
			var ids []ID
			for _, m := range migrations {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.expIDs, ids)
		})
	}
}

func TestSourceGet(t *testing.T) {
	t.Parallel()

	src, err := LoadSource(sourceFS(map[string]string{
		"00000000000001-create_users.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"00000000000001-create_users.down.sql": "DROP TABLE users;",
	}))
	require.NoError(t, err)

	m, ok := src.Get(ID("00000000000001"))
	require.True(t, ok)
	assert.Equal(t, "create_users", m.Name)
	assert.Equal(t, "CREATE TABLE users (id INTEGER PRIMARY KEY);", m.UpSQL)
	assert.Equal(t, "DROP TABLE users;", m.DownSQL)

	_, ok = src.Get(ID("00000000000099"))
	assert.False(t, ok)
}
