package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ProjectDirName, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("creating config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestInitializeDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := GetString("export.delimiter"); got != "," {
		t.Errorf("export.delimiter = %q, want %q", got, ",")
	}
	if got := GetInt("workers"); got != 1 {
		t.Errorf("workers = %d, want 1", got)
	}
	if GetBool("export.include-index") {
		t.Error("export.include-index should default to false")
	}
	if GetString("input") != "" || GetString("output") != "" {
		t.Error("input/output must not have default paths")
	}
	if src := GetValueSource("workers"); src != SourceDefault {
		t.Errorf("GetValueSource(workers) = %s, want %s", src, SourceDefault)
	}
	if ConfigFileUsed() != "" {
		t.Errorf("unexpected config file %q", ConfigFileUsed())
	}
}

func TestInitializeFindsProjectConfigFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "input: stories.jsonl\nexport:\n  include-index: true\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o750); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := GetString("input"); got != "stories.jsonl" {
		t.Errorf("input = %q, want stories.jsonl", got)
	}
	if !GetBool("export.include-index") {
		t.Error("export.include-index should come from config file")
	}
	if src := GetValueSource("input"); src != SourceConfigFile {
		t.Errorf("GetValueSource(input) = %s, want %s", src, SourceConfigFile)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "output: from-file.csv\nexport:\n  delimiter: \";\"\n")
	t.Setenv("MOVES_OUTPUT", "from-env.csv")
	t.Setenv("MOVES_EXPORT_DELIMITER", "|")

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := GetString("output"); got != "from-env.csv" {
		t.Errorf("output = %q, want from-env.csv", got)
	}
	if got := GetString("export.delimiter"); got != "|" {
		t.Errorf("export.delimiter = %q, want |", got)
	}
	if src := GetValueSource("output"); src != SourceEnvVar {
		t.Errorf("GetValueSource(output) = %s, want %s", src, SourceEnvVar)
	}
}

func TestFlagOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "workers: 2\n")
	t.Setenv("MOVES_WORKERS", "3")

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("workers", 1, "")
	if err := BindPFlag("workers", fs.Lookup("workers")); err != nil {
		t.Fatalf("BindPFlag failed: %v", err)
	}
	if got := GetInt("workers"); got != 3 {
		t.Errorf("unset flag: workers = %d, want env value 3", got)
	}

	if err := fs.Parse([]string{"--workers=4"}); err != nil {
		t.Fatal(err)
	}
	if got := GetInt("workers"); got != 4 {
		t.Errorf("workers = %d, want 4", got)
	}
	if src := GetValueSource("workers"); src != SourceFlag {
		t.Errorf("GetValueSource(workers) = %s, want %s", src, SourceFlag)
	}
}

func TestInitializeBadConfigFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "input: [unterminated\n")
	if err := Initialize(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"input", "MOVES_INPUT"},
		{"export.include-index", "MOVES_EXPORT_INCLUDE_INDEX"},
		{"log.max-size-mb", "MOVES_LOG_MAX_SIZE_MB"},
	}
	for _, tt := range tests {
		if got := EnvKey(tt.key); got != tt.want {
			t.Errorf("EnvKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSettingsSorted(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := Initialize(""); err != nil {
		t.Fatal(err)
	}

	settings := Settings()
	if len(settings) == 0 {
		t.Fatal("expected settings")
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Errorf("settings not sorted: %q before %q", settings[i-1].Key, settings[i].Key)
		}
	}
}

func TestDotEnvSuppliesUnsetVariables(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	// Register cleanup for variables the .env file will set, then unset them
	t.Setenv("MOVES_INPUT", "")
	t.Setenv("MOVES_WORKERS", "")
	_ = os.Unsetenv("MOVES_INPUT")
	t.Setenv("MOVES_WORKERS", "2")

	content := "MOVES_INPUT=stories.jsonl\nMOVES_WORKERS=8\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := GetString("input"); got != "stories.jsonl" {
		t.Errorf("input = %q, want value from .env", got)
	}
	// Variables already in the environment win over .env
	if got := GetInt("workers"); got != 2 {
		t.Errorf("workers = %d, want 2", got)
	}
}
