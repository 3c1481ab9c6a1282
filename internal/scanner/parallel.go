package scanner

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

type batchResult struct {
	elements []model.ElementData
	errors   []FileError
	scanned  int
	failed   int
}

// scanParallel splits the file list into one contiguous batch per worker
// and scans the batches concurrently. Each batch runs under its own
// timeout; a batch that exceeds it is demoted to errored with zero
// elements instead of stalling the merge.
func (s *Scanner) scanParallel(ctx context.Context, root string, files []string, opts Options, result *ScanResult) {
	batches := partition(files, opts.Workers)
	results := make(chan batchResult, len(batches))

	for _, batch := range batches {
		go func(batch []string) {
			bctx, cancel := context.WithTimeout(ctx, opts.batchTimeout())
			defer cancel()

			br := s.scanBatch(bctx, root, batch, opts)
			if bctx.Err() != nil {
				log.Warn().Int("files", len(batch)).Err(bctx.Err()).Msg("scan batch demoted")
				br = demoteBatch(batch, bctx.Err())
			}
			results <- br
		}(batch)
	}

	for range batches {
		mergeBatch(result, <-results)
	}
}

// scanBatch scans files in order, stopping early if the context ends.
func (s *Scanner) scanBatch(ctx context.Context, root string, files []string, opts Options) batchResult {
	var br batchResult
	for _, rel := range files {
		if ctx.Err() != nil {
			br.errors = append(br.errors, FileError{Path: rel, Message: ctx.Err().Error()})
			br.failed++
			continue
		}
		elements, err := s.scanFile(ctx, root, rel, opts)
		if err != nil {
			br.errors = append(br.errors, FileError{Path: rel, Message: err.Error()})
			br.failed++
			continue
		}
		br.elements = append(br.elements, elements...)
		br.scanned++
	}
	return br
}

// demoteBatch reports every file in a timed-out batch as failed.
func demoteBatch(files []string, cause error) batchResult {
	br := batchResult{failed: len(files)}
	for _, rel := range files {
		br.errors = append(br.errors, FileError{Path: rel, Message: "batch aborted: " + cause.Error()})
	}
	return br
}

func mergeBatch(result *ScanResult, br batchResult) {
	result.Elements = append(result.Elements, br.elements...)
	result.Errors = append(result.Errors, br.errors...)
	result.Stats.ScannedFiles += br.scanned
	result.Stats.FailedFiles += br.failed
}

// partition splits files into at most n contiguous batches of near-equal
// size. Batches keep walk order so merged output stays deterministic per
// batch.
func partition(files []string, n int) [][]string {
	if n > len(files) {
		n = len(files)
	}
	if n <= 1 {
		return [][]string{files}
	}
	size := (len(files) + n - 1) / n
	batches := make([][]string, 0, n)
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, files[start:end])
	}
	return batches
}
