// Package testutil provides test helpers and fixtures for cache-cleaner tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// TestFixture is a throwaway home directory with helpers to lay out caches
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned), used as the fake home
}

// NewFixture creates a new, empty fixture
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	return &TestFixture{T: t, RootDir: root}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a file of size bytes of non-zero content, so the
// filesystem has to allocate blocks for it
func (f *TestFixture) CreateSizedFile(relPath string, size int) string {
	f.T.Helper()

	content := make([]byte, size)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	return f.CreateFile(relPath, content)
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	f.SetModTime(relPath, time.Now().Add(-age))
	return fullPath
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateDirWithAge creates a directory with a specific modification time.
// Populate it first: adding entries later bumps the directory mtime.
func (f *TestFixture) CreateDirWithAge(relPath string, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateDir(relPath)
	f.SetModTime(relPath, time.Now().Add(-age))
	return fullPath
}

// Age sets the modification time of an existing entry to age ago
func (f *TestFixture) Age(relPath string, age time.Duration) {
	f.T.Helper()
	f.SetModTime(relPath, time.Now().Add(-age))
}

// SetModTime sets the access and modification times of an existing entry
func (f *TestFixture) SetModTime(relPath string, mod time.Time) {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.Chtimes(fullPath, mod, mod); err != nil {
		f.T.Fatalf("failed to set time for %s: %v", fullPath, err)
	}
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := f.Path(linkPath)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}

	return fullLinkPath
}

// =============================================================================
// Permission Helpers
// =============================================================================

// CreateUnreadableDir creates a directory with mode 000. The mode is restored
// on cleanup so t.TempDir can remove it.
func (f *TestFixture) CreateUnreadableDir(relPath string) string {
	f.T.Helper()

	fullPath := f.CreateDir(relPath)
	if err := os.Chmod(fullPath, 0); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", fullPath, err)
	}
	f.T.Cleanup(func() { os.Chmod(fullPath, 0755) })

	return fullPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// =============================================================================
// Dev Artifact Helpers
// =============================================================================

// PopulateNodeModules creates a node_modules tree under project with a
// nested node_modules inside one package, as npm lays them out
func (f *TestFixture) PopulateNodeModules(project string) string {
	f.T.Helper()

	root := filepath.Join(project, "node_modules")
	f.CreateSizedFile(filepath.Join(root, "lodash", "index.js"), 4096)
	f.CreateSizedFile(filepath.Join(root, "lodash", "package.json"), 512)
	f.CreateSizedFile(filepath.Join(root, "react", "node_modules", "scheduler", "index.js"), 2048)

	return f.Path(root)
}

// =============================================================================
// Utility Functions
// =============================================================================

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// SkipOnWindows skips tests that depend on POSIX permissions or symlinks
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on windows")
	}
}
