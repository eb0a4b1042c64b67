//go:build !windows

package debug

// readRSS is unsupported off Windows; runtime stats still log heap data.
func readRSS() (uint64, bool) { return 0, false }
