package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirName is the name of the global (~/.pocket) and repo (.pocket) config directories.
const DirName = ".pocket"

// FileNames are the config file names looked up in a config directory, in order.
var FileNames = []string{"config.json", "config.yaml", "config.yml"}

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// Backend selects the key-value backend: "sqlite" (default) or "memory".
	// The memory backend keeps nothing across runs; useful for demos and tests.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// ImportMaxBytes caps the size of an import payload
	ImportMaxBytes int64 `json:"import_max_bytes" yaml:"import_max_bytes"`

	// AllowedPaths is an allowlist of directories for file import/export.
	// Paths outside ~/.pocket/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty" yaml:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" yaml:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" yaml:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" yaml:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names whose tools are all excluded.
	// Known types: "capsule", "progress".
	DisabledTypes []string `json:"disabled_types,omitempty" yaml:"disabled_types,omitempty"`

	// LogMode is "dev" (default, human-readable) or "prod" (JSON).
	LogMode string `json:"log_mode,omitempty" yaml:"log_mode,omitempty"`

	// WebBind is the address the web UI listens on.
	WebBind string `json:"web_bind,omitempty" yaml:"web_bind,omitempty"`

	// WebPort is the port the web UI listens on.
	WebPort int `json:"web_port,omitempty" yaml:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendSQLite,
		ImportMaxBytes: 1 << 20,
		LogMode:        "dev",
		WebBind:        "127.0.0.1",
		WebPort:        8765,
	}
}

// Load loads configuration from baseDir/config.json (or config.yaml).
// Returns default config if no file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pocket.
func Load(baseDir string) (*Config, error) {
	return loadFile(findConfigFile(baseDir))
}

// LoadWithRepo loads configuration from both global (~/.pocket) and repo (.pocket) directories.
// Repo config is found by walking upward from startDir to find the nearest .pocket/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(findConfigFile(globalDir))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .pocket config file.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		if configPath := findConfigFile(filepath.Join(dir, DirName)); configPath != "" {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// findConfigFile returns the first existing config file in dir, or "".
func findConfigFile(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Backend = firstString(overlay.Backend, base.Backend)
	result.LogMode = firstString(overlay.LogMode, base.LogMode)
	result.WebBind = firstString(overlay.WebBind, base.WebBind)

	result.ImportMaxBytes = overlay.ImportMaxBytes
	if result.ImportMaxBytes == 0 {
		result.ImportMaxBytes = base.ImportMaxBytes
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
