// Package repo clones and updates project repositories for scanning.
package repo

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/lang"
)

// Service handles repository checkout operations
type Service struct {
	baseDir string
	token   string
}

// NewService creates a new repository service. baseDir is the workspace
// root where checkouts are stored; token is used for private repos.
func NewService(baseDir, token string) *Service {
	return &Service{
		baseDir: baseDir,
		token:   token,
	}
}

// Info contains parsed repository information
type Info struct {
	Host     string
	Owner    string
	Name     string
	URL      string
	CloneURL string
	Branch   string
}

// CheckoutResult contains the result of a clone or pull operation
type CheckoutResult struct {
	Path      string
	CommitSHA string
	Branch    string
}

// ParseURL parses a git URL and returns repo info. Both HTTPS and SSH
// (git@host:owner/repo.git) forms are accepted; the clone URL is always
// normalized to HTTPS.
func ParseURL(rawURL string) (*Info, error) {
	// Handle git@host:owner/repo.git format
	if strings.HasPrefix(rawURL, "git@") {
		parts := strings.Split(rawURL, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid SSH URL format: %s", rawURL)
		}
		host := strings.TrimPrefix(parts[0], "git@")
		pathParts := strings.Split(strings.TrimSuffix(parts[1], ".git"), "/")
		if len(pathParts) != 2 {
			return nil, fmt.Errorf("invalid repo path: %s", parts[1])
		}
		return &Info{
			Host:     host,
			Owner:    pathParts[0],
			Name:     pathParts[1],
			URL:      rawURL,
			CloneURL: fmt.Sprintf("https://%s/%s/%s.git", host, pathParts[0], pathParts[1]),
			Branch:   "main",
		}, nil
	}

	// Parse HTTPS URL
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme in: %s", rawURL)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("missing host in URL: %s", rawURL)
	}

	pathParts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(pathParts) < 2 {
		return nil, fmt.Errorf("invalid repo path: %s", parsed.Path)
	}

	owner := pathParts[0]
	name := strings.TrimSuffix(pathParts[1], ".git")
	if owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repo path: %s", parsed.Path)
	}

	return &Info{
		Host:     parsed.Host,
		Owner:    owner,
		Name:     name,
		URL:      rawURL,
		CloneURL: fmt.Sprintf("https://%s/%s/%s.git", parsed.Host, owner, name),
		Branch:   "main",
	}, nil
}

// LocalPath returns the checkout directory for a repository
func (s *Service) LocalPath(info *Info) string {
	return filepath.Join(s.baseDir, info.Host, info.Owner, info.Name)
}

// Checkout ensures a fresh working copy: pulls when a checkout already
// exists, clones otherwise. A failed pull falls back to a clean clone.
func (s *Service) Checkout(ctx context.Context, info *Info) (*CheckoutResult, error) {
	repoDir := s.LocalPath(info)

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		result, err := s.Pull(ctx, repoDir)
		if err == nil {
			return result, nil
		}
		log.Warn().Err(err).Str("path", repoDir).Msg("pull failed, recloning")
	}

	return s.Clone(ctx, info)
}

// Clone clones a repository to local storage
func (s *Service) Clone(ctx context.Context, info *Info) (*CheckoutResult, error) {
	repoDir := s.LocalPath(info)

	// Remove existing directory if it exists
	if _, err := os.Stat(repoDir); err == nil {
		log.Debug().Str("path", repoDir).Msg("removing existing repo directory")
		if err := os.RemoveAll(repoDir); err != nil {
			return nil, fmt.Errorf("failed to remove existing directory: %w", err)
		}
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(repoDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	log.Info().
		Str("url", info.CloneURL).
		Str("path", repoDir).
		Msg("cloning repository")

	// Setup clone options
	cloneOpts := &git.CloneOptions{
		URL:      info.CloneURL,
		Progress: nil,
		Depth:    1, // Shallow clone for faster download
	}

	// Add authentication if token is available
	if s.token != "" {
		cloneOpts.Auth = &http.BasicAuth{
			Username: "git", // Can be anything for token auth
			Password: s.token,
		}
	}

	// Try specific branch first, fall back to default
	if info.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(info.Branch)
		cloneOpts.SingleBranch = true
	}

	// Clone the repository
	r, err := git.PlainCloneContext(ctx, repoDir, false, cloneOpts)
	if err != nil {
		// If branch doesn't exist, try without specifying branch
		if strings.Contains(err.Error(), "reference not found") && info.Branch != "" {
			log.Debug().Str("branch", info.Branch).Msg("branch not found, trying default")
			cloneOpts.ReferenceName = ""
			cloneOpts.SingleBranch = false
			r, err = git.PlainCloneContext(ctx, repoDir, false, cloneOpts)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to clone: %w", err)
		}
	}

	// Get HEAD commit
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	result := &CheckoutResult{
		Path:      repoDir,
		CommitSHA: head.Hash().String(),
		Branch:    head.Name().Short(),
	}

	log.Info().
		Str("commit", result.CommitSHA[:8]).
		Str("branch", result.Branch).
		Msg("clone complete")

	return result, nil
}

// Pull updates an existing repository
func (s *Service) Pull(ctx context.Context, repoPath string) (*CheckoutResult, error) {
	r, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repo: %w", err)
	}

	worktree, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOpts := &git.PullOptions{
		Progress: nil,
	}

	if s.token != "" {
		pullOpts.Auth = &http.BasicAuth{
			Username: "git",
			Password: s.token,
		}
	}

	err = worktree.PullContext(ctx, pullOpts)
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	return &CheckoutResult{
		Path:      repoPath,
		CommitSHA: head.Hash().String(),
		Branch:    head.Name().Short(),
	}, nil
}

// HeadSHA returns the current HEAD commit of a local checkout
func HeadSHA(repoPath string) (string, error) {
	r, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repo: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// DetectLanguages walks a checkout and counts source files per language.
// Test files and dependency directories are skipped; TSX counts as
// TypeScript.
func DetectLanguages(repoPath string) (map[string]int, error) {
	languages := make(map[string]int)

	err := filepath.Walk(repoPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if strings.HasPrefix(name, ".") && path != repoPath {
				return filepath.SkipDir
			}
			switch name {
			case "node_modules", "vendor", "__pycache__", "dist", "build":
				return filepath.SkipDir
			}
			return nil
		}

		// Skip test files
		base := filepath.Base(path)
		if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") ||
			strings.HasPrefix(base, "test_") {
			return nil
		}

		l, ok := lang.ForFile(path)
		if !ok {
			return nil
		}
		if l == lang.TSX {
			l = lang.TypeScript
		}
		languages[string(l)]++

		return nil
	})

	return languages, err
}

// LanguageSelectors returns language names ordered by file count,
// most common first. Ties break alphabetically.
func LanguageSelectors(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for l := range counts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
