package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathValidator handles path validation before anything is deleted
type PathValidator struct {
	protectedPaths []string
	allowedRoots   []string
}

// NewPathValidator creates a new PathValidator with default protected paths
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/proc",
			"/root",
			"/sbin",
			"/sys",
			"/usr",
			"/var",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library/System",
		},
	}
}

// ValidatePathForDeletion checks a path before deletion. It is the single
// place deciding whether the cleaner may touch a path.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	cleanPath := filepath.Clean(path)
	if cleanPath != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	if strings.ContainsAny(cleanPath, "\x00\n\r") {
		return fmt.Errorf("path contains control characters: %q", cleanPath)
	}

	if err := pv.checkProtectedPaths(cleanPath); err != nil {
		return err
	}

	return pv.checkAllowedRoots(cleanPath)
}

// checkProtectedPaths validates that a path is not in a protected system directory
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return fmt.Errorf("refusing to delete protected path: %s", cleanPath)
		}

		// /usr/foo is refused, /usr/local/cache/foo is not
		if strings.HasPrefix(cleanPath, protected+"/") {
			rel, _ := filepath.Rel(protected, cleanPath)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("refusing to delete critical system path: %s", cleanPath)
			}
		}
	}

	return nil
}

// checkAllowedRoots requires the path to sit strictly below one of the
// allowed roots, when any are configured
func (pv *PathValidator) checkAllowedRoots(cleanPath string) error {
	if len(pv.allowedRoots) == 0 {
		return nil
	}

	for _, root := range pv.allowedRoots {
		if IsWithin(root, cleanPath) {
			return nil
		}
	}
	return fmt.Errorf("path is outside every cache location: %s", cleanPath)
}

// IsProtectedPath checks if a path is a protected system path
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected || strings.HasPrefix(cleanPath, protected+"/") {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	cleanPath := filepath.Clean(path)
	pv.protectedPaths = append(pv.protectedPaths, cleanPath)
}

// AllowRoots restricts deletion to paths strictly below the given roots
func (pv *PathValidator) AllowRoots(roots ...string) {
	for _, r := range roots {
		pv.allowedRoots = append(pv.allowedRoots, filepath.Clean(r))
	}
}

// IsWithin reports whether path lies strictly below root.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}

	_, err := filepath.Match(pattern, "test")
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	return nil
}
