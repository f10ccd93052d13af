//go:build linux

package tables

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// listThreads reads /proc/<pid>/task/<tid>/stat for each thread of pid,
// parsing the fields documented in proc(5): comm, state, utime, stime.
func listThreads(pid int) ([]threadRow, error) {
	taskDir := fmt.Sprintf("/proc/%d/task", pid)
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, fmt.Errorf("tables: read %s: %w", taskDir, err)
	}
	var rows []threadRow
	for _, ent := range entries {
		tid, err := strconv.Atoi(ent.Name())
		if err != nil {
			continue
		}
		row, err := readThreadStat(pid, tid)
		if err != nil {
			continue // thread may have exited between readdir and read
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readThreadStat(pid, tid int) (threadRow, error) {
	path := fmt.Sprintf("/proc/%d/task/%d/stat", pid, tid)
	data, err := os.ReadFile(path)
	if err != nil {
		return threadRow{}, err
	}
	line := strings.TrimSpace(string(data))

	// comm is whitespace-delimited but parenthesized and may itself
	// contain spaces/parens, so split on the last ')' rather than field 2.
	open := strings.IndexByte(line, '(')
	closeIdx := strings.LastIndexByte(line, ')')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return threadRow{}, fmt.Errorf("tables: malformed stat line")
	}
	name := line[open+1 : closeIdx]
	rest := strings.Fields(line[closeIdx+1:])
	if len(rest) < 12 {
		return threadRow{}, fmt.Errorf("tables: short stat line")
	}
	state := rest[0]
	utime, _ := strconv.ParseInt(rest[11], 10, 64)
	stime, _ := strconv.ParseInt(rest[12], 10, 64)
	return threadRow{tid: int32(tid), name: name, state: state, utimeTicks: utime, stimeTicks: stime}, nil
}
