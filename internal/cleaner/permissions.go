package cleaner

import (
	"fmt"
	"os"
	"path/filepath"
)

// maxLinkDepth bounds symlink resolution in IsSpecialFile
const maxLinkDepth = 8

// IsSpecialFile checks if a path is a special file (device, socket, pipe),
// directly or through a chain of symlinks
func IsSpecialFile(path string) (bool, error) {
	return isSpecialFile(path, 0)
}

func isSpecialFile(path string, depth int) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}

	mode := info.Mode()

	switch {
	case mode&os.ModeDevice != 0:
		return true, fmt.Errorf("is a device file")
	case mode&os.ModeCharDevice != 0:
		return true, fmt.Errorf("is a character device")
	case mode&os.ModeSocket != 0:
		return true, fmt.Errorf("is a socket")
	case mode&os.ModeNamedPipe != 0:
		return true, fmt.Errorf("is a named pipe (FIFO)")
	case mode&os.ModeSymlink != 0:
		if depth >= maxLinkDepth {
			return false, nil
		}
		target, err := os.Readlink(path)
		if err != nil {
			return false, err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		return isSpecialFile(target, depth+1)
	}

	return false, nil
}

// IsSafeToDelete refuses special files and reports a missing path
func IsSafeToDelete(path string) error {
	if isSpecial, err := IsSpecialFile(path); isSpecial {
		return &DeletionError{
			Path:     path,
			Reason:   ErrorSpecialFile,
			Original: fmt.Errorf("refusing to delete special file: %w", err),
		}
	}

	if _, err := os.Lstat(path); err != nil {
		return CategorizeError(path, err)
	}

	return nil
}
