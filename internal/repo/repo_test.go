package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Service Tests
// =============================================================================

func TestNewService(t *testing.T) {
	svc := NewService("/tmp/workspace", "test-token")

	if svc == nil {
		t.Fatal("NewService returned nil")
	}

	if svc.baseDir != "/tmp/workspace" {
		t.Errorf("baseDir = %s, want /tmp/workspace", svc.baseDir)
	}

	if svc.token != "test-token" {
		t.Errorf("token = %s, want test-token", svc.token)
	}
}

func TestService_LocalPath(t *testing.T) {
	svc := NewService("/tmp/workspace", "")

	info := &Info{Host: "github.com", Owner: "owner", Name: "repo"}
	got := svc.LocalPath(info)
	want := filepath.Join("/tmp/workspace", "github.com", "owner", "repo")

	if got != want {
		t.Errorf("LocalPath = %s, want %s", got, want)
	}
}

// =============================================================================
// ParseURL Tests
// =============================================================================

func TestParseURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantHost  string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "https URL",
			url:       "https://github.com/owner/repo",
			wantHost:  "github.com",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "https URL with .git",
			url:       "https://github.com/owner/repo.git",
			wantHost:  "github.com",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "SSH URL",
			url:       "git@github.com:owner/repo.git",
			wantHost:  "github.com",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "SSH URL without .git",
			url:       "git@github.com:owner/repo",
			wantHost:  "github.com",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "gitlab URL",
			url:       "https://gitlab.com/owner/repo",
			wantHost:  "gitlab.com",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "self-hosted URL",
			url:       "https://git.example.com/team/project.git",
			wantHost:  "git.example.com",
			wantOwner: "team",
			wantName:  "project",
			wantErr:   false,
		},
		{
			name:    "invalid URL",
			url:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "missing repo in path",
			url:     "https://github.com/owner",
			wantErr: true,
		},
		{
			name:    "invalid SSH format",
			url:     "git@github.com/owner/repo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if info.Host != tt.wantHost {
				t.Errorf("Host = %s, want %s", info.Host, tt.wantHost)
			}

			if info.Owner != tt.wantOwner {
				t.Errorf("Owner = %s, want %s", info.Owner, tt.wantOwner)
			}

			if info.Name != tt.wantName {
				t.Errorf("Name = %s, want %s", info.Name, tt.wantName)
			}

			// Verify CloneURL is always HTTPS
			if !strings.HasPrefix(info.CloneURL, "https://") {
				t.Errorf("CloneURL should be HTTPS, got %s", info.CloneURL)
			}
		})
	}
}

func TestParseURL_TrailingSlash(t *testing.T) {
	info, err := ParseURL("https://github.com/owner/repo/")
	if err != nil {
		t.Fatalf("ParseURL error: %v", err)
	}

	if info.Owner != "owner" {
		t.Errorf("Owner = %s, want owner", info.Owner)
	}
	if info.Name != "repo" {
		t.Errorf("Name = %s, want repo", info.Name)
	}
}

func TestParseURL_CaseSensitivity(t *testing.T) {
	info, err := ParseURL("https://github.com/Owner/Repo")
	if err != nil {
		t.Fatalf("ParseURL error: %v", err)
	}

	// Should preserve case
	if info.Owner != "Owner" {
		t.Errorf("Owner = %s, want Owner (case preserved)", info.Owner)
	}
	if info.Name != "Repo" {
		t.Errorf("Name = %s, want Repo (case preserved)", info.Name)
	}
}

func TestParseURL_EmptyOwner(t *testing.T) {
	_, err := ParseURL("https://github.com//repo")
	if err == nil {
		t.Error("Should return error for empty owner")
	}
}

func TestParseURL_EmptyRepo(t *testing.T) {
	_, err := ParseURL("https://github.com/owner/")
	if err == nil {
		t.Error("Should return error for empty repo")
	}
}

func TestParseURL_ExtraSegments(t *testing.T) {
	// URL with extra path segments should still work
	info, err := ParseURL("https://github.com/owner/repo/tree/main")
	if err != nil {
		t.Fatalf("ParseURL error: %v", err)
	}

	if info.Owner != "owner" {
		t.Errorf("Owner = %s, want owner", info.Owner)
	}
	if info.Name != "repo" {
		t.Errorf("Name = %s, want repo", info.Name)
	}
}

func TestParseURL_DefaultBranch(t *testing.T) {
	info, err := ParseURL("https://github.com/owner/repo")
	if err != nil {
		t.Fatalf("ParseURL error: %v", err)
	}

	if info.Branch != "main" {
		t.Errorf("Branch = %s, want main", info.Branch)
	}
}

// =============================================================================
// DetectLanguages Tests
// =============================================================================

func TestDetectLanguages(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "repo-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	createTestFile(t, tmpDir, "index.js", "console.log('hello')")
	createTestFile(t, tmpDir, "util.mjs", "export const x = 1")
	createTestFile(t, tmpDir, "app.py", "import os")
	createTestFile(t, tmpDir, "app.test.py", "import pytest") // skipped (.test.)
	createTestFile(t, tmpDir, "test_app.py", "import pytest") // skipped (test_ prefix)
	createTestFile(t, tmpDir, "server.ts", "export {}")
	createTestFile(t, tmpDir, "App.tsx", "export default function App() {}")
	createTestFile(t, tmpDir, "main.spec.ts", "describe('x', () => {})") // skipped (.spec.)
	createTestFile(t, tmpDir, "README.md", "# Test")                    // unsupported extension

	languages, err := DetectLanguages(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		lang string
		want int
	}{
		{"javascript", 2}, // index.js and util.mjs
		{"python", 1},     // app.py only
		{"typescript", 2}, // server.ts plus App.tsx (tsx counts as typescript)
	}

	for _, tt := range tests {
		got := languages[tt.lang]
		if got != tt.want {
			t.Errorf("languages[%s] = %d, want %d", tt.lang, got, tt.want)
		}
	}
}

func TestDetectLanguages_SkipsDependencyDirs(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "repo-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	createTestFile(t, tmpDir, "index.js", "console.log('hello')")
	createTestFile(t, tmpDir, "node_modules/pkg/index.js", "module.exports = {}")
	createTestFile(t, tmpDir, "dist/bundle.js", "!function(){}()")
	createTestFile(t, tmpDir, ".git/hooks/pre-commit.py", "import sys")
	createTestFile(t, tmpDir, "__pycache__/cache.py", "")

	languages, err := DetectLanguages(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if languages["javascript"] != 1 {
		t.Errorf("languages[javascript] = %d, want 1 (node_modules and dist skipped)", languages["javascript"])
	}
	if languages["python"] != 0 {
		t.Errorf("languages[python] = %d, want 0 (.git and __pycache__ skipped)", languages["python"])
	}
}

func TestDetectLanguages_EmptyDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "repo-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	languages, err := DetectLanguages(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(languages) != 0 {
		t.Errorf("languages = %v, want empty map", languages)
	}
}

// =============================================================================
// LanguageSelectors Tests
// =============================================================================

func TestLanguageSelectors(t *testing.T) {
	counts := map[string]int{
		"python":     3,
		"typescript": 10,
		"javascript": 3,
	}

	got := LanguageSelectors(counts)

	want := []string{"typescript", "javascript", "python"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selectors[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLanguageSelectors_Empty(t *testing.T) {
	got := LanguageSelectors(map[string]int{})
	if len(got) != 0 {
		t.Errorf("selectors = %v, want empty", got)
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

func createTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file %s: %v", name, err)
	}
}

// =============================================================================
// Info and CheckoutResult Tests
// =============================================================================

func TestInfo_Fields(t *testing.T) {
	info := Info{
		Host:     "github.com",
		Owner:    "owner",
		Name:     "repo",
		URL:      "https://github.com/owner/repo",
		CloneURL: "https://github.com/owner/repo.git",
		Branch:   "main",
	}

	if info.Owner != "owner" {
		t.Errorf("Owner = %s, want owner", info.Owner)
	}
	if info.Branch != "main" {
		t.Errorf("Branch = %s, want main", info.Branch)
	}
}

func TestCheckoutResult_Fields(t *testing.T) {
	result := CheckoutResult{
		Path:      "/tmp/workspace/github.com/owner/repo",
		CommitSHA: "abc123def456",
		Branch:    "main",
	}

	if result.Path != "/tmp/workspace/github.com/owner/repo" {
		t.Errorf("Path = %s, want /tmp/workspace/github.com/owner/repo", result.Path)
	}
	if result.CommitSHA != "abc123def456" {
		t.Errorf("CommitSHA = %s, want abc123def456", result.CommitSHA)
	}
}
