//go:build darwin

package vault

import (
	"os"
	"syscall"
	"time"
)

// birthTime returns the file creation time where the platform records one,
// falling back to the modification time.
func birthTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	}
	return info.ModTime()
}
