package scanner

import "time"

// DefaultExcludePatterns skips version-control, dependency, cache,
// virtual-environment, and build-output directories. Callers supplying
// their own exclude list (even an empty one) replace these entirely.
var DefaultExcludePatterns = []string{
	"**/.git/**", "**/.svn/**", "**/.hg/**",
	"**/node_modules/**", "**/bower_components/**",
	"**/.venv/**", "**/venv/**", "**/__pycache__/**",
	"**/.pytest_cache/**", "**/.mypy_cache/**", "**/.cache/**",
	"**/dist/**", "**/build/**", "**/out/**", "**/.next/**",
	"**/coverage/**",
}

// Options controls one scan invocation.
type Options struct {
	// Exclude holds glob patterns matched against each relative path.
	// nil means DefaultExcludePatterns; a non-nil empty slice disables
	// exclusion.
	Exclude []string

	// Include, when non-empty, restricts the scan to paths matching at
	// least one of these globs.
	Include []string

	Recursive       bool
	UseAST          bool
	RegexFallback   bool
	IncludeComments bool
	Verbose         bool

	// Parallel splits large file sets into batches processed
	// concurrently. Workers <= 0 degrades to sequential scanning.
	Parallel bool
	Workers  int

	// BatchTimeout bounds one parallel batch. A batch that exceeds it is
	// recorded as errored with zero elements instead of stalling the
	// scan. Zero means DefaultBatchTimeout.
	BatchTimeout time.Duration
}

// DefaultBatchTimeout bounds a parallel batch that stops making progress.
const DefaultBatchTimeout = 2 * time.Minute

// parallelThreshold is the file count below which parallel mode is not
// worth the goroutine overhead.
const parallelThreshold = 16

// DefaultOptions returns the safest configuration: recursive AST scanning
// with regex fallback, sequential processing, default excludes.
func DefaultOptions() Options {
	return Options{
		Recursive:     true,
		UseAST:        true,
		RegexFallback: true,
	}
}

func (o Options) batchTimeout() time.Duration {
	if o.BatchTimeout <= 0 {
		return DefaultBatchTimeout
	}
	return o.BatchTimeout
}
