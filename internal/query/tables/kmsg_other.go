//go:build !linux

package tables

// readKmsg has no equivalent outside Linux's /dev/kmsg device;
// process.kmsg is simply empty on other platforms.
func readKmsg() ([]kmsgEntry, error) { return nil, nil }
