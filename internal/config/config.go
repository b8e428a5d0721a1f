package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
)

const (
	// DefaultPrefix is the tool-name prefix used when neither the flag nor
	// the PREFIX environment variable is set.
	DefaultPrefix = "sql_tool"

	// DefaultMaxChars is the truncation budget for formatted query output.
	DefaultMaxChars = 4000
)

// Database is a single named connection target. Each target registers its
// own prefixed tool set, so one process can serve several databases with
// non-colliding tool names.
type Database struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Prefix string `json:"prefix"`
}

type LoggingConfig struct {
	Level      string `json:"level"`
	OutputFile string `json:"output_file"`
	MaxSizeMB  int64  `json:"max_size_mb"`
	Console    bool   `json:"console"`
}

type Config struct {
	Databases []Database
	MaxChars  int
	ReadOnly  bool
	Logging   LoggingConfig
}

// Options carries flag values; zero values fall back to the environment
// (DB_URL, PREFIX, EXECUTE_QUERY_MAX_CHARS) and then to defaults.
type Options struct {
	DBURL         string
	Prefix        string
	DatabasesPath string
	MaxChars      int
	ReadOnly      bool
	LogFile       string
	LogLevel      string
}

func Load(opts Options) (*Config, error) {
	maxChars, err := resolveMaxChars(opts.MaxChars)
	if err != nil {
		return nil, err
	}

	databases, err := resolveDatabases(opts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Databases: databases,
		MaxChars:  maxChars,
		ReadOnly:  opts.ReadOnly,
		Logging: LoggingConfig{
			Level:      opts.LogLevel,
			OutputFile: opts.LogFile,
			MaxSizeMB:  10,
			Console:    true,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Databases) == 0 {
		return fmt.Errorf("no database configured: set DB_URL or provide a databases file")
	}
	seen := make(map[string]string, len(c.Databases))
	for _, db := range c.Databases {
		if db.URL == "" {
			return fmt.Errorf("database %q: url is required", db.Name)
		}
		if db.Prefix == "" {
			return fmt.Errorf("database %q: prefix is required", db.Name)
		}
		if other, ok := seen[db.Prefix]; ok {
			return fmt.Errorf("databases %q and %q share prefix %q", other, db.Name, db.Prefix)
		}
		seen[db.Prefix] = db.Name
	}
	return nil
}

func resolveMaxChars(flagValue int) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	if raw := os.Getenv("EXECUTE_QUERY_MAX_CHARS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid EXECUTE_QUERY_MAX_CHARS %q", raw)
		}
		return n, nil
	}
	return DefaultMaxChars, nil
}

func resolveDatabases(opts Options) ([]Database, error) {
	if opts.DatabasesPath != "" {
		return loadDatabasesFile(opts.DatabasesPath)
	}

	url := opts.DBURL
	if url == "" {
		url = os.Getenv("DB_URL")
	}
	if url != "" {
		prefix := opts.Prefix
		if prefix == "" {
			prefix = os.Getenv("PREFIX")
		}
		if prefix == "" {
			prefix = DefaultPrefix
		}
		return []Database{{Name: "default", URL: url, Prefix: prefix}}, nil
	}

	// No URL given: fall back to a databases file in a well-known location.
	for _, path := range defaultDatabasesPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadDatabasesFile(path)
		}
	}
	return nil, nil
}

func defaultDatabasesPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			paths = append(paths, filepath.Join(appData, "sqltool-mcp", "databases.json"))
		}
	default:
		if homeDir := os.Getenv("HOME"); homeDir != "" {
			paths = append(paths, filepath.Join(homeDir, ".config", "sqltool-mcp", "databases.json"))
		}
	}

	if pwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(pwd, "databases.json"))
	}

	return paths
}

type databasesFile struct {
	Databases map[string]Database `json:"databases"`
}

func loadDatabasesFile(path string) ([]Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read databases file: %w", err)
	}

	var file databasesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse databases file: %w", err)
	}

	names := make([]string, 0, len(file.Databases))
	for name := range file.Databases {
		names = append(names, name)
	}
	sort.Strings(names)

	databases := make([]Database, 0, len(names))
	for _, name := range names {
		db := file.Databases[name]
		db.Name = name
		databases = append(databases, db)
	}
	return databases, nil
}
