package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents a .coderef.yaml file in a repository
type ProjectConfig struct {
	Version string `yaml:"version"`

	// Language selectors to scan (ts, tsx, js, py). Empty means all supported.
	Languages []string `yaml:"languages,omitempty"`

	// File patterns
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// Scan settings
	Scan ScanConfig `yaml:"scan,omitempty"`

	// Output settings
	Output OutputConfig `yaml:"output,omitempty"`
}

// ScanConfig holds element extraction preferences
type ScanConfig struct {
	// Whether to parse files with tree-sitter before falling back to regex
	AST bool `yaml:"ast"`

	// Whether a failed parse falls back to the regex extractor
	RegexFallback bool `yaml:"regex_fallback"`

	// Whether to scan file batches concurrently
	Parallel bool `yaml:"parallel,omitempty"`

	// Worker count for parallel scans (0 = runtime.NumCPU)
	Workers int `yaml:"workers,omitempty"`

	// Whether subdirectories are scanned
	Recursive bool `yaml:"recursive"`
}

// OutputConfig holds artifact output preferences
type OutputConfig struct {
	// Directory for generated artifacts, relative to the repo root
	Dir string `yaml:"dir,omitempty"`

	// Whether scan output includes per-element metadata
	Metadata bool `yaml:"metadata,omitempty"`
}

// DefaultProjectConfig returns sensible defaults
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: "1.0",
		Exclude: []string{
			"**/node_modules/**",
			"**/dist/**",
			"**/build/**",
			"**/.git/**",
			"**/__pycache__/**",
			"**/venv/**",
			"**/.venv/**",
		},
		Scan: ScanConfig{
			AST:           true,
			RegexFallback: true,
			Recursive:     true,
		},
		Output: OutputConfig{
			Dir: ".coderef",
		},
	}
}

// LoadProjectConfig loads a .coderef.yaml from the given directory
func LoadProjectConfig(repoPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(repoPath, ".coderef.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Also try .coderef.yml
		configPath = filepath.Join(repoPath, ".coderef.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveProjectConfig saves the config to .coderef.yaml
func SaveProjectConfig(repoPath string, cfg *ProjectConfig) error {
	configPath := filepath.Join(repoPath, ".coderef.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Merge applies overrides from another config (e.g., CLI flags)
func (c *ProjectConfig) Merge(other *ProjectConfig) {
	if other == nil {
		return
	}

	if len(other.Languages) > 0 {
		c.Languages = other.Languages
	}

	if len(other.Include) > 0 {
		c.Include = other.Include
	}

	if len(other.Exclude) > 0 {
		c.Exclude = other.Exclude
	}

	if other.Scan.Workers != 0 {
		c.Scan.Workers = other.Scan.Workers
	}

	if other.Scan.Parallel {
		c.Scan.Parallel = true
	}

	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
}
