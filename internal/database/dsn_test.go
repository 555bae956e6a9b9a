package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "club.sqlite")

	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  Config{DSN: "file:club.db", Path: path},
			want: "file:club.db",
		},
		{
			name: "memory",
			cfg:  Config{Path: ":memory:"},
			want: "file::memory:?_foreign_keys=1&cache=shared",
		},
		{
			name: "file with override",
			cfg:  Config{Path: path, Options: map[string]string{"_busy_timeout": "100"}},
			want: "file:" + filepath.ToSlash(path) + "?_busy_timeout=100&_foreign_keys=1&_journal_mode=WAL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dsn, err := buildSQLiteDSN(tc.cfg)
			require.NoError(t, err)
			require.Equal(t, tc.want, dsn)
		})
	}
	require.DirExists(t, filepath.Join(dir, "nested"))
}

func TestBuildServerDSNs(t *testing.T) {
	cases := []struct {
		name  string
		build func(Config) (string, error)
		cfg   Config
		want  string
	}{
		{
			name:  "postgres defaults",
			build: buildPostgresDSN,
			cfg:   Config{User: "club", Name: "clubsphere"},
			want:  "host=localhost port=5432 user=club dbname=clubsphere sslmode=disable",
		},
		{
			name:  "postgres options sorted and override sslmode",
			build: buildPostgresDSN,
			cfg: Config{
				User: "audit", Password: "pw", Name: "club", Host: "db.club.test", Port: 6543,
				Options: map[string]string{"sslmode": "require", "search_path": "audit"},
			},
			want: "host=db.club.test port=6543 user=audit dbname=club password=pw search_path=audit sslmode=require",
		},
		{
			name:  "mysql defaults",
			build: buildMySQLDSN,
			cfg:   Config{User: "club", Name: "clubsphere"},
			want:  "club@tcp(127.0.0.1:3306)/clubsphere?charset=utf8mb4&loc=Local&parseTime=True",
		},
		{
			name:  "mysql credentials and tls",
			build: buildMySQLDSN,
			cfg: Config{
				User: "audit", Password: "secret", Name: "club", Host: "mysql.club.test", Port: 3307,
				Options: map[string]string{"tls": "skip-verify"},
			},
			want: "audit:secret@tcp(mysql.club.test:3307)/club?charset=utf8mb4&loc=Local&parseTime=True&tls=skip-verify",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dsn, err := tc.build(tc.cfg)
			require.NoError(t, err)
			require.Equal(t, tc.want, dsn)
		})
	}
}

func TestBuildServerDSNsRequireUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{Host: "db.club.test"})
	require.Error(t, err)

	_, err = buildMySQLDSN(Config{User: "club"})
	require.Error(t, err)

	dsn, err := buildMySQLDSN(Config{DSN: "raw"})
	require.NoError(t, err)
	require.Equal(t, "raw", dsn)
}
