// Package scanner discovers code elements across a project tree. The
// orchestrator walks the directory, filters by language and exclusion
// globs, and hands each file to the AST scanner, falling back to the regex
// scanner when a file will not parse. One file failing never aborts the
// scan.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/lang"
	"github.com/srwlli/dashboard-sub004/internal/patterns"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// Scanner coordinates directory scans. The per-path cache lives for the
// scanner's lifetime: repeated scans of an unchanged path return the cached
// slice itself. Each parallel batch owns its files exclusively, so the
// mutex only guards the map, never a value.
type Scanner struct {
	registry *patterns.Registry
	ast      *ASTScanner

	mu    sync.Mutex
	cache map[string][]model.ElementData
}

// New returns a scanner using the given pattern registry for regex mode.
// A nil registry gets the built-in defaults.
func New(registry *patterns.Registry) *Scanner {
	if registry == nil {
		registry = patterns.NewRegistry()
	}
	return &Scanner{
		registry: registry,
		ast:      NewASTScanner(),
		cache:    make(map[string][]model.ElementData),
	}
}

// Scan enumerates files under root matching the language selectors and
// scans each one. A missing root is the only hard failure; per-file errors
// are collected in the result. Element paths are relative to root.
func (s *Scanner) Scan(ctx context.Context, root string, selectors []string, opts Options) (*ScanResult, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	exts := lang.ExtensionsForSelectors(selectors)
	if len(exts) == 0 {
		exts = lang.AllExtensions()
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}

	excludes := opts.Exclude
	if excludes == nil {
		excludes = DefaultExcludePatterns
	}
	excl, err := compileGlobs(excludes)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	incl, err := compileGlobs(opts.Include)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	files, walkErrs := collectFiles(root, extSet, excl, incl, opts.Recursive)

	result := &ScanResult{Files: files, Errors: walkErrs}
	result.Stats.TotalFiles = len(files)

	if opts.Verbose {
		log.Info().Str("root", root).Int("files", len(files)).Msg("scanning")
	}

	if opts.Parallel && opts.Workers > 0 && len(files) >= parallelThreshold {
		s.scanParallel(ctx, root, files, opts, result)
	} else {
		if opts.Parallel && opts.Workers <= 0 {
			log.Warn().Int("workers", opts.Workers).Msg("invalid worker count, scanning sequentially")
		}
		br := s.scanBatch(ctx, root, files, opts)
		mergeBatch(result, br)
	}

	result.Stats.TotalElements = len(result.Elements)
	result.Stats.Duration = time.Since(start)
	return result, nil
}

// ClearCache drops the session cache and the AST scanner's cache.
func (s *Scanner) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string][]model.ElementData)
	s.mu.Unlock()
	s.ast.ClearCache()
}

// scanFile runs one file through the configured mode, consulting and
// filling the session cache. rel is recorded in the elements; the file is
// read from root.
func (s *Scanner) scanFile(ctx context.Context, root, rel string, opts Options) ([]model.ElementData, error) {
	full := filepath.Join(root, rel)

	s.mu.Lock()
	cached, ok := s.cache[full]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	language, ok := lang.ForFile(rel)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", rel)
	}

	var elements []model.ElementData
	if opts.UseAST {
		elements, err = s.ast.ParseElements(ctx, content, rel)
		if err != nil {
			if !opts.RegexFallback {
				return nil, err
			}
			if opts.Verbose {
				log.Debug().Str("file", rel).Err(err).Msg("ast parse failed, using regex fallback")
			}
			elements = s.regexScan(rel, content, language, opts.IncludeComments)
		}
	} else {
		elements = s.regexScan(rel, content, language, opts.IncludeComments)
	}

	s.mu.Lock()
	s.cache[full] = elements
	s.mu.Unlock()
	return elements, nil
}

func (s *Scanner) regexScan(rel string, content []byte, language lang.Language, includeComments bool) []model.ElementData {
	rs := NewRegexScanner(s.registry)
	rs.ProcessFile(rel, content, language, includeComments)
	return rs.Elements()
}

// collectFiles walks root gathering relative paths with a wanted extension.
// Excluded directories are pruned; unreadable directories are recorded and
// skipped.
func collectFiles(root string, exts map[string]bool, excl, incl []glob.Glob, recursive bool) ([]string, []FileError) {
	var files []string
	var errs []FileError

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, FileError{Path: path, Message: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !recursive {
				return fs.SkipDir
			}
			if matchAny(excl, rel, true) {
				return fs.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}
		if matchAny(excl, rel, false) {
			return nil
		}
		if len(incl) > 0 && !matchAny(incl, rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})

	return files, errs
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// matchAny tests a relative path against the globs. Paths are anchored
// with a leading slash so "**/dir/**" patterns match at any depth
// including the top level; basenames are tested too so bare patterns like
// "*.test.ts" behave as expected.
func matchAny(globs []glob.Glob, rel string, isDir bool) bool {
	if len(globs) == 0 {
		return false
	}
	candidate := "/" + rel
	if isDir {
		candidate += "/"
	}
	base := filepath.Base(rel)
	for _, g := range globs {
		if g.Match(candidate) || g.Match(base) {
			return true
		}
	}
	return false
}
