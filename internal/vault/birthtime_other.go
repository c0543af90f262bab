//go:build !darwin

package vault

import (
	"os"
	"time"
)

// birthTime falls back to the modification time on platforms that do not
// expose a file creation timestamp through os.FileInfo.
func birthTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
