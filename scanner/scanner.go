// Package scanner fans the per-image classification out across the files of
// a directory and collects the deletion list.
package scanner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imagecleaner/classify"
	"imagecleaner/database"
	"imagecleaner/imageloader"
	"imagecleaner/logging"
	"imagecleaner/pixelbuf"
	"imagecleaner/signalhandler"
	"imagecleaner/types"
)

// CleanFolder classifies every regular file directly under the folder, in
// parallel, and returns the paths judged degenerate together with aggregate
// statistics. Subdirectories are not entered.
//
// Enumeration failure is fatal and returns ErrDirectoryUnreadable; per-file
// failures are folded into the verdicts and never abort the scan. When ctx
// is canceled, no new files are dispatched, in-flight classifications drain,
// and the partial result is discarded in favor of ctx.Err().
//
// db may be nil; when set, each verdict is stored as a report row under
// options.ScanID.
func CleanFolder(ctx context.Context, db *sql.DB, options ScanOptions) ([]string, *types.CleanStats, error) {
	entries, err := os.ReadDir(options.FolderPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnreadable, options.FolderPath, err)
	}

	var candidates []string
	imageLike := 0
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(options.FolderPath, entry.Name())
		candidates = append(candidates, path)
		if imageloader.HasImageExtension(path) {
			imageLike++
		}
	}

	printStartupInfo(len(candidates), imageLike, options)

	tracker := NewProgressTracker(len(candidates), options.Quiet)
	defer tracker.Stop()

	workers := options.MaxWorkers
	if workers <= 0 {
		workers = signalhandler.GetOptimalProcs()
	}

	var wg sync.WaitGroup
	resultsChan := make(chan fileResult, 100)
	semaphore := make(chan struct{}, workers)

	stats := &types.CleanStats{}
	var toDelete []string
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for result := range resultsChan {
			tracker.record(result)
			collectResult(db, result, options, stats, &toDelete)
		}
	}()

	startTime := time.Now()
	for _, path := range candidates {
		if ctx != nil && ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(p string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := classifyFile(p, options)
			tracker.FileProcessed()
			if options.Progress != nil {
				options.Progress.FileProcessed()
			}
			resultsChan <- result
		}(path)
	}

	wg.Wait()
	close(resultsChan)
	<-collectorDone

	printCompletionStats(tracker, stats, startTime, options)

	if ctx != nil && ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	return toDelete, stats, nil
}

// collectResult folds one classification into the aggregate state. Runs
// only on the collector goroutine, so the report store and the exiftool
// extractor see no concurrent calls.
func collectResult(db *sql.DB, result fileResult, options ScanOptions, stats *types.CleanStats, toDelete *[]string) {
	stats.Total++

	verdict := result.Verdict
	if verdict.Delete {
		stats.Flagged++
		*toDelete = append(*toDelete, result.Path)
	}
	switch verdict.Reason {
	case types.ReasonDecodeFailure:
		stats.DecodeFailures++
	case types.ReasonUnsupportedLayout:
		stats.Unsupported++
	case types.ReasonSolidColor:
		stats.SolidColor++
	case types.ReasonTargetColorMatch:
		stats.TargetMatches++
	}

	logging.LogFileClassified(result.Path, verdict.Delete, string(verdict.Reason))

	if db == nil {
		return
	}
	report := types.FileReport{
		ScanID:   options.ScanID,
		Path:     result.Path,
		Layout:   result.Layout.String(),
		Width:    result.Width,
		Height:   result.Height,
		Delete:   verdict.Delete,
		Reason:   verdict.Reason,
		Measured: verdict.Measured,
	}
	if options.Metadata != nil && verdict.Delete {
		report.MimeType, report.CameraModel = options.Metadata.Describe(result.Path)
	}
	if err := database.StoreFileReport(db, report); err != nil {
		logging.LogError("%v", err)
	}
}

// classifyFile decodes and classifies a single file end to end. Failures
// are terminal for this file only and map onto delete verdicts.
func classifyFile(path string, options ScanOptions) fileResult {
	buf, err := imageloader.Load(path)
	if err != nil {
		if errors.Is(err, pixelbuf.ErrUnsupportedLayout) {
			logging.LogWarning("unsupported channel layout, flagging: %s", path)
			return fileResult{Path: path, Verdict: classify.UnsupportedLayout(), Err: err}
		}
		if options.DebugMode {
			logging.DebugLog("decode failed: %v", err)
		}
		return fileResult{Path: path, Verdict: classify.DecodeFailure(), Err: err}
	}

	return fileResult{
		Path:    path,
		Verdict: classify.Classify(buf, options.Config),
		Layout:  buf.Layout,
		Width:   buf.Width,
		Height:  buf.Height,
	}
}

// printStartupInfo displays information about the scan before starting
func printStartupInfo(total, imageLike int, options ScanOptions) {
	if options.Quiet {
		return
	}
	fmt.Printf("Starting corpus clean...\nFiles to classify: %d (%d with image extensions)\n", total, imageLike)

	if options.DebugMode {
		fmt.Printf("Debug mode: enabled\n")
		logging.DebugLog("Found %d candidate files in %s (%d with image extensions)",
			total, options.FolderPath, imageLike)
	}
}

// printCompletionStats displays statistics after the scan completes
func printCompletionStats(tracker *ProgressTracker, stats *types.CleanStats, startTime time.Time, options ScanOptions) {
	elapsed := time.Since(startTime)

	if options.DebugMode {
		logging.DebugLog("Clean completed in %v. Processed: %d, Flagged: %d, Decode failures: %d, Unsupported: %d",
			elapsed, stats.Total, stats.Flagged, stats.DecodeFailures, stats.Unsupported)
	}

	if options.Quiet {
		return
	}
	fmt.Println("\nClassification complete.")
	fmt.Printf("Processed %d files in %v.\n", tracker.Processed(), elapsed.Round(time.Millisecond))
}
