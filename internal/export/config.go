package export

import (
	"fmt"
	"unicode/utf8"
)

// Configuration keys read by LoadConfig
const (
	ConfigKeyDelimiter     = "export.delimiter"
	ConfigKeyIncludeIndex  = "export.include-index"
	ConfigKeyWriteManifest = "export.write-manifest"
)

// Defaults
const (
	DefaultDelimiter     = ','
	DefaultIncludeIndex  = false
	DefaultWriteManifest = false
)

// Config controls how the entity table is written
type Config struct {
	// Delimiter separates fields; must not be a quote, CR or LF
	Delimiter rune
	// IncludeIndex prepends an unnamed 0-based row index column
	IncludeIndex bool
	// WriteManifest writes <output>.manifest.yaml next to the table
	WriteManifest bool
}

// DefaultConfig returns the comma-separated configuration without index or manifest
func DefaultConfig() *Config {
	return &Config{
		Delimiter:     DefaultDelimiter,
		IncludeIndex:  DefaultIncludeIndex,
		WriteManifest: DefaultWriteManifest,
	}
}

// ConfigStore defines the minimal configuration interface needed for export
type ConfigStore interface {
	GetString(key string) string
	GetBool(key string) bool
}

// LoadConfig reads export configuration from store, falling back to defaults
// for unset values.
func LoadConfig(store ConfigStore) (*Config, error) {
	cfg := DefaultConfig()

	if val := store.GetString(ConfigKeyDelimiter); val != "" {
		d, err := ParseDelimiter(val)
		if err != nil {
			return nil, err
		}
		cfg.Delimiter = d
	}
	cfg.IncludeIndex = store.GetBool(ConfigKeyIncludeIndex)
	cfg.WriteManifest = store.GetBool(ConfigKeyWriteManifest)

	return cfg, nil
}

// ParseDelimiter validates a delimiter setting. "\t" and "tab" both mean a
// tab character.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !validDelimiter(r) {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}
