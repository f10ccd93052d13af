//go:build !linux

package tables

// listThreads has no portable equivalent to /proc/<pid>/task outside
// Linux; process.threads is simply empty on other platforms.
func listThreads(pid int) ([]threadRow, error) { return nil, nil }
