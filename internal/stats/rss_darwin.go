package stats

import "golang.org/x/sys/unix"

func residentBytes() (uint64, bool) {
	return 0, false
}

// maxResidentBytes は getrusage の最大RSSを返す（macOS ではバイト単位）
func maxResidentBytes() (uint64, bool) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, false
	}
	return uint64(usage.Maxrss), true
}
