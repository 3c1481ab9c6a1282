package scanner

import (
	"time"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// FileError records one file that could not be read or parsed. Scans carry
// these alongside the elements instead of failing.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ScanStats summarizes one scan pass.
type ScanStats struct {
	TotalFiles    int           `json:"total_files"`
	ScannedFiles  int           `json:"scanned_files"`
	FailedFiles   int           `json:"failed_files"`
	TotalElements int           `json:"total_elements"`
	Duration      time.Duration `json:"duration"`
}

// ScanResult is the aggregate output of scanning one or more files. Files
// lists every enumerated path, including ones that yielded no elements, so
// downstream passes (annotation, coverage) see export-only and empty files.
type ScanResult struct {
	Files    []string            `json:"files,omitempty"`
	Elements []model.ElementData `json:"elements"`
	Errors   []FileError         `json:"errors"`
	Stats    ScanStats           `json:"stats"`
}
