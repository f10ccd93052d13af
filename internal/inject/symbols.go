//go:build linux

package inject

import (
	"bufio"
	"debug/elf"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// mappedRegion is one /proc/<pid>/maps line's address range and
// backing file, when it has one.
type mappedRegion struct {
	start, end uint64
	path       string
}

func readMaps(pid int) ([]mappedRegion, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, fmt.Errorf("inject: read maps: %w", err)
	}
	defer f.Close()

	var regions []mappedRegion
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if r, ok := parseMapsLine(scanner.Text()); ok {
			regions = append(regions, r)
		}
	}
	return regions, scanner.Err()
}

// parseMapsLine parses one /proc/<pid>/maps line into its address
// range and backing file path, if any.
func parseMapsLine(line string) (mappedRegion, bool) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return mappedRegion{}, false
	}
	bounds := strings.SplitN(fields[0], "-", 2)
	if len(bounds) != 2 {
		return mappedRegion{}, false
	}
	start, err1 := strconv.ParseUint(bounds[0], 16, 64)
	end, err2 := strconv.ParseUint(bounds[1], 16, 64)
	if err1 != nil || err2 != nil {
		return mappedRegion{}, false
	}
	path := ""
	if len(fields) >= 6 {
		path = fields[5]
	}
	return mappedRegion{start: start, end: end, path: path}, true
}

// loaderMapped reports whether the tracee has mapped a file whose
// basename matches the dynamic loader naming convention (ld-linux*,
// ld-musl*), meaning libc/libdl symbols can now be resolved.
func loaderMapped(pid int) (bool, error) {
	regions, err := readMaps(pid)
	if err != nil {
		return false, err
	}
	for _, r := range regions {
		base := baseName(r.path)
		if strings.HasPrefix(base, "ld-linux") || strings.HasPrefix(base, "ld-musl") {
			return true, nil
		}
	}
	return false, nil
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// resolveLibrarySymbol finds symbol in the first mapped shared object
// whose basename contains libNameSubstr, returning the symbol's
// runtime address in the tracee and the library's own path.
//
// This assumes the library's first loadable segment has vaddr 0, true
// for the overwhelming majority of glibc/musl builds, so the symbol's
// link-time value is already an offset from the mapping's load base.
func resolveLibrarySymbol(pid int, libNameSubstr, symbol string) (addr uint64, libPath string, err error) {
	regions, err := readMaps(pid)
	if err != nil {
		return 0, "", err
	}

	var base uint64
	var foundPath string
	haveBase := false
	for _, r := range regions {
		if !strings.Contains(baseName(r.path), libNameSubstr) {
			continue
		}
		if haveBase && r.path != foundPath {
			continue // only the first matching object's mappings count
		}
		if !haveBase || r.start < base {
			base = r.start
			haveBase = true
		}
		foundPath = r.path
	}
	if !haveBase {
		return 0, "", fmt.Errorf("inject: no mapped library matching %q in pid %d", libNameSubstr, pid)
	}

	f, err := elf.Open(foundPath)
	if err != nil {
		return 0, "", fmt.Errorf("inject: open %s: %w", foundPath, err)
	}
	defer f.Close()

	syms, err := f.DynamicSymbols()
	if err != nil {
		return 0, "", fmt.Errorf("inject: read dynsym of %s: %w", foundPath, err)
	}
	for _, s := range syms {
		if s.Name == symbol {
			return base + s.Value, foundPath, nil
		}
	}
	return 0, "", fmt.Errorf("inject: symbol %q not found in %s", symbol, foundPath)
}
