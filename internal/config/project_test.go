package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProjectConfig(t *testing.T) {
	cfg := DefaultProjectConfig()

	if cfg == nil {
		t.Fatal("DefaultProjectConfig() returned nil")
	}

	if cfg.Version != "1.0" {
		t.Errorf("Version = %s, want 1.0", cfg.Version)
	}

	// Check scan defaults
	if !cfg.Scan.AST {
		t.Error("Scan.AST should be true")
	}
	if !cfg.Scan.RegexFallback {
		t.Error("Scan.RegexFallback should be true")
	}
	if !cfg.Scan.Recursive {
		t.Error("Scan.Recursive should be true")
	}

	// Check exclude patterns
	if len(cfg.Exclude) < 4 {
		t.Errorf("len(Exclude) = %d, want at least 4", len(cfg.Exclude))
	}

	// Check output defaults
	if cfg.Output.Dir != ".coderef" {
		t.Errorf("Output.Dir = %s, want .coderef", cfg.Output.Dir)
	}
}

func TestProjectConfig_Merge(t *testing.T) {
	base := DefaultProjectConfig()

	override := &ProjectConfig{
		Languages: []string{"py"},
		Include:   []string{"src/**/*.py"},
		Scan: ScanConfig{
			Parallel: true,
			Workers:  4,
		},
		Output: OutputConfig{
			Dir: "artifacts",
		},
	}

	base.Merge(override)

	if len(base.Languages) != 1 || base.Languages[0] != "py" {
		t.Errorf("Languages = %v, want [py]", base.Languages)
	}
	if len(base.Include) != 1 || base.Include[0] != "src/**/*.py" {
		t.Errorf("Include = %v, want [src/**/*.py]", base.Include)
	}
	if !base.Scan.Parallel {
		t.Error("Scan.Parallel should be true after merge")
	}
	if base.Scan.Workers != 4 {
		t.Errorf("Scan.Workers = %d, want 4", base.Scan.Workers)
	}
	if base.Output.Dir != "artifacts" {
		t.Errorf("Output.Dir = %s, want artifacts", base.Output.Dir)
	}
}

func TestProjectConfig_Merge_NilOverride(t *testing.T) {
	base := DefaultProjectConfig()
	originalVersion := base.Version

	base.Merge(nil)

	// Should not change anything
	if base.Version != originalVersion {
		t.Error("Merge(nil) should not change config")
	}
}

func TestProjectConfig_Merge_PartialOverride(t *testing.T) {
	base := DefaultProjectConfig()
	originalExclude := len(base.Exclude)

	// Only override workers
	override := &ProjectConfig{
		Scan: ScanConfig{
			Workers: 8,
		},
	}

	base.Merge(override)

	// Workers should change
	if base.Scan.Workers != 8 {
		t.Errorf("Scan.Workers = %d, want 8", base.Scan.Workers)
	}

	// Output dir should remain unchanged
	if base.Output.Dir != ".coderef" {
		t.Errorf("Output.Dir = %s, want .coderef", base.Output.Dir)
	}

	// Exclude should remain unchanged
	if len(base.Exclude) != originalExclude {
		t.Errorf("len(Exclude) = %d, want %d", len(base.Exclude), originalExclude)
	}
}

func TestLoadProjectConfig_NoFile(t *testing.T) {
	// Use temp directory with no config file
	tmpDir := t.TempDir()

	cfg, err := LoadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error = %v", err)
	}

	// Should return defaults
	if cfg.Version != "1.0" {
		t.Errorf("Version = %s, want 1.0", cfg.Version)
	}
}

func TestLoadProjectConfig_YamlFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".coderef.yaml")

	yamlContent := `
version: "2.0"
languages:
  - ts
  - tsx
scan:
  ast: false
  regex_fallback: true
  recursive: true
  workers: 8
output:
  dir: out
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error = %v", err)
	}

	if cfg.Version != "2.0" {
		t.Errorf("Version = %s, want 2.0", cfg.Version)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "ts" {
		t.Errorf("Languages = %v, want [ts tsx]", cfg.Languages)
	}
	if cfg.Scan.AST {
		t.Error("Scan.AST should be false")
	}
	if cfg.Scan.Workers != 8 {
		t.Errorf("Scan.Workers = %d, want 8", cfg.Scan.Workers)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %s, want out", cfg.Output.Dir)
	}
}

func TestLoadProjectConfig_YmlFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".coderef.yml")

	yamlContent := `
version: "1.5"
languages:
  - py
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error = %v", err)
	}

	if cfg.Version != "1.5" {
		t.Errorf("Version = %s, want 1.5", cfg.Version)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "py" {
		t.Errorf("Languages = %v, want [py]", cfg.Languages)
	}
}

func TestSaveProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &ProjectConfig{
		Version:   "1.0",
		Languages: []string{"js"},
		Scan: ScanConfig{
			AST:           true,
			RegexFallback: true,
			Recursive:     true,
		},
	}

	if err := SaveProjectConfig(tmpDir, cfg); err != nil {
		t.Fatalf("SaveProjectConfig() error = %v", err)
	}

	// Verify file was created
	configPath := filepath.Join(tmpDir, ".coderef.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	// Load it back
	loaded, err := LoadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error = %v", err)
	}

	if loaded.Version != cfg.Version {
		t.Errorf("Version = %s, want %s", loaded.Version, cfg.Version)
	}
	if len(loaded.Languages) != 1 || loaded.Languages[0] != "js" {
		t.Errorf("Languages = %v, want [js]", loaded.Languages)
	}
	if !loaded.Scan.AST {
		t.Error("Scan.AST should survive a round trip")
	}
}

func TestLoadProjectConfig_InvalidYaml(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".coderef.yaml")

	invalidYaml := `
version: [invalid yaml
scan:
  - this is wrong
`

	if err := os.WriteFile(configPath, []byte(invalidYaml), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadProjectConfig(tmpDir)
	if err == nil {
		t.Error("LoadProjectConfig() should return error for invalid YAML")
	}
}
