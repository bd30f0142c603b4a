package signalhandler

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler wires SIGINT/SIGTERM to the supplied cancel function so an
// in-progress scan drains gracefully. A second signal exits immediately.
func SetupHandler(cancel func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted - finishing in-flight files (interrupt again to abort)")
		cancel()

		<-sigChan
		os.Exit(1)
	}()
}

// GetOptimalProcs returns the worker count for the scan pool. Classification
// is CPU-bound, so leaving a fraction of the cores free keeps the host
// responsive during long scans.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
