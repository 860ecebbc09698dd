package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// Space is the capacity of the volume hosting a path
type Space struct {
	Path  string
	Total uint64
	Free  uint64
}

// Used returns the bytes in use on the volume
func (s Space) Used() uint64 {
	if s.Free > s.Total {
		return 0
	}
	return s.Total - s.Free
}

// DiskSpace reports total and free bytes for the volume containing path.
// It has no side effects and is safe to call while a scan or clean runs.
func DiskSpace(path string) (Space, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return Space{}, fmt.Errorf("failed to query disk usage for %s: %w", path, err)
	}

	return Space{
		Path:  path,
		Total: usage.Total,
		Free:  usage.Free,
	}, nil
}
