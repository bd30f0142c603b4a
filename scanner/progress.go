package scanner

import (
	"fmt"
	"time"

	"imagecleaner/types"
)

// NewProgressTracker initializes the progress tracker and starts its
// display goroutine
func NewProgressTracker(totalFiles int, quiet bool) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		totalFiles: totalFiles,
		quiet:      quiet,
	}

	go tracker.displayProgress()

	return tracker
}

// FileProcessed counts one more classified file. Called concurrently from
// every worker goroutine, hence the atomic counter.
func (p *ProgressTracker) FileProcessed() {
	p.processed.Add(1)
}

// Processed returns the number of files classified so far
func (p *ProgressTracker) Processed() int {
	return int(p.processed.Load())
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			if p.quiet {
				continue
			}
			p.mu.Lock()
			if p.decodeFailures > 0 || p.unsupported > 0 {
				fmt.Printf("\rProgress: %d/%d (flagged: %d, unreadable: %d, unsupported: %d)",
					p.Processed(), p.totalFiles, p.flagged, p.decodeFailures, p.unsupported)
			} else {
				fmt.Printf("\rProgress: %d/%d (flagged: %d)",
					p.Processed(), p.totalFiles, p.flagged)
			}
			p.mu.Unlock()
		}
	}
}

// record updates the per-reason tallies from one result
func (p *ProgressTracker) record(result fileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if result.Verdict.Delete {
		p.flagged++
	}
	switch result.Verdict.Reason {
	case types.ReasonDecodeFailure:
		p.decodeFailures++
	case types.ReasonUnsupportedLayout:
		p.unsupported++
	}
}

// Stop ends the progress tracking
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	p.done <- true
}
