//go:build !linux && !darwin

package stats

func residentBytes() (uint64, bool) {
	return 0, false
}

func maxResidentBytes() (uint64, bool) {
	return 0, false
}
