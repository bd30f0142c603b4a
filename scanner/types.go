package scanner

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"imagecleaner/classify"
	"imagecleaner/metadata"
	"imagecleaner/pixelbuf"
	"imagecleaner/types"
)

// ErrDirectoryUnreadable is the fatal error for a root folder that cannot
// be enumerated. Per-file failures never produce it.
var ErrDirectoryUnreadable = errors.New("directory unreadable")

// ScanOptions defines the options for a clean run
type ScanOptions struct {
	FolderPath string
	Config     classify.Config
	MaxWorkers int
	DebugMode  bool
	Quiet      bool // suppress startup/progress/completion output

	// ScanID ties stored report rows to one scans row; used only when a
	// report database is passed to CleanFolder.
	ScanID int64
	// Metadata optionally enriches flagged report rows via exiftool.
	Metadata *metadata.Extractor
	// Progress optionally receives one signal per file, in addition to the
	// built-in tracker.
	Progress ProgressObserver
}

// ProgressObserver receives an advisory signal per processed file. It is
// invoked concurrently from all worker goroutines.
type ProgressObserver interface {
	FileProcessed()
}

// fileResult holds the classification outcome for one file
type fileResult struct {
	Path    string
	Verdict types.Verdict
	Layout  pixelbuf.Layout
	Width   int
	Height  int
	Err     error
}

// ProgressTracker tracks progress of the clean operation
type ProgressTracker struct {
	processed atomic.Int64

	mu             sync.Mutex
	flagged        int
	decodeFailures int
	unsupported    int

	ticker     *time.Ticker
	done       chan bool
	totalFiles int
	quiet      bool
}
