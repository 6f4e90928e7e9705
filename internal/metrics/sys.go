package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"
)

var startedAt = time.Now()

// SysHealth is a point-in-time view of the process.
type SysHealth struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int
	Uptime     time.Duration
	DataSize   string
}

// GetSysHealth reads runtime stats and the size of the data directory.
func GetSysHealth(dataDir string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(startedAt).Truncate(time.Second),
		DataSize:   FormatBytes(dirSize(dataDir)),
	}
}

func dirSize(root string) int64 {
	var size int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

// FormatBytes renders n with a binary unit suffix, e.g. "1.5 KB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
