//go:build !linux && !darwin

package ingest

import "time"

// creationTime reports no birth time on platforms without a portable source.
func creationTime(string) (time.Time, bool) {
	return time.Time{}, false
}
