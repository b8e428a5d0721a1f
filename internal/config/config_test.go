package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_URL", "")
	t.Setenv("PREFIX", "")
	t.Setenv("EXECUTE_QUERY_MAX_CHARS", "")
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{DBURL: "postgres://svc@db/app"})
	require.NoError(t, err)
	require.Len(t, cfg.Databases, 1)
	require.Equal(t, "default", cfg.Databases[0].Name)
	require.Equal(t, "postgres://svc@db/app", cfg.Databases[0].URL)
	require.Equal(t, DefaultPrefix, cfg.Databases[0].Prefix)
	require.Equal(t, DefaultMaxChars, cfg.MaxChars)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://svc@db/app")
	t.Setenv("PREFIX", "billing")
	t.Setenv("EXECUTE_QUERY_MAX_CHARS", "250")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	require.Equal(t, "billing", cfg.Databases[0].Prefix)
	require.Equal(t, 250, cfg.MaxChars)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://env@db/app")
	t.Setenv("PREFIX", "envprefix")

	cfg, err := Load(Options{DBURL: "postgres://flag@db/app", Prefix: "flagprefix", MaxChars: 99})
	require.NoError(t, err)
	require.Equal(t, "postgres://flag@db/app", cfg.Databases[0].URL)
	require.Equal(t, "flagprefix", cfg.Databases[0].Prefix)
	require.Equal(t, 99, cfg.MaxChars)
}

func TestLoad_InvalidMaxChars(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://svc@db/app")
	t.Setenv("EXECUTE_QUERY_MAX_CHARS", "not-a-number")

	_, err := Load(Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "EXECUTE_QUERY_MAX_CHARS")
}

func TestLoad_NoDatabaseConfigured(t *testing.T) {
	clearEnv(t)

	_, err := Load(Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no database configured")
}

func TestLoad_DatabasesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "databases.json")
	content := `{
		"databases": {
			"billing": {"url": "postgres://svc@db/billing", "prefix": "billing"},
			"analytics": {"url": "mysql://svc@db/analytics", "prefix": "analytics"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(Options{DatabasesPath: path})
	require.NoError(t, err)
	require.Len(t, cfg.Databases, 2)

	// Entries come back name-sorted so registration order is deterministic.
	require.Equal(t, "analytics", cfg.Databases[0].Name)
	require.Equal(t, "billing", cfg.Databases[1].Name)
	require.Equal(t, "postgres://svc@db/billing", cfg.Databases[1].URL)
}

func TestLoad_DuplicatePrefixRejected(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "databases.json")
	content := `{
		"databases": {
			"a": {"url": "postgres://svc@db/a", "prefix": "sql_tool"},
			"b": {"url": "postgres://svc@db/b", "prefix": "sql_tool"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(Options{DatabasesPath: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "share prefix")
}

func TestLoad_MissingPrefixInFileRejected(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "databases.json")
	content := `{"databases": {"a": {"url": "postgres://svc@db/a"}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(Options{DatabasesPath: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix is required")
}
