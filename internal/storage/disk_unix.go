//go:build !windows

package storage

import (
	"fmt"
	"syscall"
)

// GetDiskSpace returns disk space information for the filesystem holding
// path, or its nearest existing parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = existingParent(path)

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to get disk space: %w", err)
	}

	info := &DiskSpaceInfo{
		Path:       path,
		TotalBytes: uint64(stat.Blocks) * uint64(stat.Bsize),
		FreeBytes:  uint64(stat.Bavail) * uint64(stat.Bsize),
	}
	info.UsedBytes = info.TotalBytes - info.FreeBytes
	return info, nil
}
