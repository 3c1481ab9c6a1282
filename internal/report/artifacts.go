package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// encodeJSON renders v as indented JSON with a trailing newline. The label
// names the artifact in error messages.
func encodeJSON(v interface{}, label string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", label, err)
	}
	return append(data, '\n'), nil
}

// writeJSON encodes v and writes it to path, creating parent directories.
func writeJSON(v interface{}, label, path string) error {
	data, err := encodeJSON(v, label)
	if err != nil {
		return err
	}
	return writeArtifact(path, data)
}

// writeArtifact writes pre-rendered artifact bytes, creating parent
// directories.
func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
