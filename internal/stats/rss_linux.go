package stats

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// residentBytes は /proc/self/statm から現在のRSSを読む
func residentBytes() (uint64, bool) {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, false
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}

	pageSize := unix.Getpagesize()
	if pageSize <= 0 {
		return 0, false
	}
	return pages * uint64(pageSize), true
}

// maxResidentBytes は getrusage の最大RSSを返す（Linux ではKB単位）
func maxResidentBytes() (uint64, bool) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, false
	}
	return uint64(usage.Maxrss) * 1024, true
}
