package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/untoldecay/movestories/internal/debug"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. MOVES_INPUT, MOVES_EXPORT_DELIMITER
const EnvPrefix = "MOVES"

// ProjectDirName is the per-project configuration directory
const ProjectDirName = ".movestories"

var (
	v     *viper.Viper
	flags = map[string]*pflag.Flag{}
)

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup. explicitPath, when
// non-empty, is used instead of searching for a config file.
func Initialize(explicitPath string) error {
	v = viper.New()
	flags = map[string]*pflag.Flag{}

	// A .env file in the working directory supplies MOVES_* variables
	// that are not already set in the environment
	loadDotEnv(".env")

	v.SetConfigType("yaml")

	// Precedence: --config > project .movestories/config.yaml > ~/.config/movestories/config.yaml
	configFile := explicitPath
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Environment variables take precedence over the config file.
	// MOVES_EXPORT_INCLUDE_INDEX maps to "export.include-index".
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("Debug: no config.yaml found; using defaults and environment variables\n")
	}

	return nil
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		debug.Logf("Debug: ignoring %s: %v\n", path, err)
		return
	}
	debug.Logf("Debug: loaded environment from %s\n", path)
}

func setDefaults(v *viper.Viper) {
	// Paths have no defaults; they must be configured
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("workers", 1)
	v.SetDefault("verbose", false)
	v.SetDefault("no-color", false)

	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.include-index", false)
	v.SetDefault("export.write-manifest", false)

	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 10)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age-days", 28)

	v.SetDefault("preview.limit", 20)

	v.SetDefault("hooks.dir", filepath.Join(ProjectDirName, "hooks"))
	v.SetDefault("hooks.timeout", "10s")

	// Run history and metrics are off unless a file is configured
	v.SetDefault("history.file", "")
	v.SetDefault("metrics.textfile", "")
}

func findConfigFile() string {
	// Walk up from CWD so commands work from subdirectories
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ProjectDirName, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		configPath := filepath.Join(configDir, "movestories", "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}

// BindPFlag binds a cobra flag to a configuration key so an explicitly set
// flag wins over env vars and the config file.
func BindPFlag(key string, flag *pflag.Flag) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}
	if flag == nil {
		return fmt.Errorf("no flag for config key %q", key)
	}
	flags[key] = flag
	return v.BindPFlag(key, flag)
}

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceConfigFile ConfigSource = "config_file"
	SourceEnvVar     ConfigSource = "env_var"
	SourceFlag       ConfigSource = "flag"
)

// GetValueSource returns the source of a configuration value.
// Priority (highest to lowest): flag > env var > config file > default
func GetValueSource(key string) ConfigSource {
	if v == nil {
		return SourceDefault
	}

	if f, ok := flags[key]; ok && f.Changed {
		return SourceFlag
	}

	if os.Getenv(EnvKey(key)) != "" {
		return SourceEnvVar
	}

	if v.InConfig(key) {
		return SourceConfigFile
	}

	return SourceDefault
}

// EnvKey returns the environment variable that overrides key
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Setting is one effective configuration value and where it came from
type Setting struct {
	Key    string       `json:"key"`
	Value  interface{}  `json:"value"`
	Source ConfigSource `json:"source"`
}

// Settings lists every known key, sorted, with its effective value
func Settings() []Setting {
	if v == nil {
		return nil
	}
	keys := v.AllKeys()
	sort.Strings(keys)

	out := make([]Setting, 0, len(keys))
	for _, k := range keys {
		out = append(out, Setting{Key: k, Value: v.Get(k), Source: GetValueSource(k)})
	}
	return out
}

// ConfigFileUsed returns the config file that was loaded, if any
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// Store adapts the package-level configuration to the getter interface
// consumers such as the exporter accept.
type Store struct{}

func (Store) GetString(key string) string { return GetString(key) }
func (Store) GetBool(key string) bool     { return GetBool(key) }
func (Store) GetInt(key string) int       { return GetInt(key) }
