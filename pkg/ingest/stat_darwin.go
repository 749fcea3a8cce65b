//go:build darwin

package ingest

import (
	"os"
	"syscall"
	"time"
)

// creationTime reports the file birth time where the filesystem records one.
func creationTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true
}
