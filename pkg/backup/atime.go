package backup

import (
	"os"
	"time"

	"github.com/djherbis/times"
)

// accessTime falls back to the modification time on filesystems mounted
// without access times.
func accessTime(info os.FileInfo) time.Time {
	atime := times.Get(info).AccessTime()
	if atime.IsZero() {
		return info.ModTime()
	}

	return atime
}
