package security

import (
	"strings"
	"testing"
)

func TestValidatePathForDeletion(t *testing.T) {
	pv := NewPathValidator()

	tests := []struct {
		name        string
		path        string
		shouldError bool
		errorMsg    string
	}{
		{"absolute path - valid", "/tmp/test-cleanup-file.txt", false, ""},
		{"cache dir with spaces and parens - valid", "/Users/dev/Library/Caches/Google Chrome (1)", false, ""},
		{"cache entry with dollar sign - valid", "/home/dev/.gradle/caches/Foo$Bar", false, ""},
		{"relative path - invalid", "relative/path.txt", true, "path must be absolute"},
		{"empty path - invalid", "", true, "path must be absolute"},
		{"path with newline - invalid", "/tmp/test\nmalicious", true, "control characters"},
		{"path with null byte - invalid", "/tmp/test\x00malicious", true, "control characters"},
		{"root directory - protected", "/", true, "protected path"},
		{"/bin directory - protected", "/bin", true, "refusing to delete protected path"},
		{"/etc/direct-child - protected", "/etc/newfile", true, "critical system path"},
		{"/usr/newdir - protected (1 level)", "/usr/newdir", true, "critical system path"},
		{"/usr deep path - allowed", "/usr/local/cache/foo", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidatePathForDeletion(tt.path)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errorMsg)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestAllowRoots(t *testing.T) {
	pv := NewPathValidator()
	pv.AllowRoots("/home/dev/.npm/_cacache", "/home/dev")

	tests := []struct {
		name        string
		path        string
		shouldError bool
	}{
		{"direct child of cache root", "/home/dev/.npm/_cacache/index-v5", false},
		{"match found under home", "/home/dev/code/app/node_modules", false},
		{"root itself", "/home/dev", true},
		{"sibling with shared prefix", "/home/developer/cache", true},
		{"outside every root", "/opt/data/cache", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidatePathForDeletion(tt.path)
			if tt.shouldError && err == nil {
				t.Errorf("Expected error for %s, got nil", tt.path)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error for %s, got: %v", tt.path, err)
			}
		})
	}
}

func TestAddProtectedPath(t *testing.T) {
	pv := NewPathValidator()
	pv.AddProtectedPath("/home/dev/Documents/")

	if err := pv.ValidatePathForDeletion("/home/dev/Documents"); err == nil {
		t.Error("expected protected path to be refused")
	}
	if err := pv.ValidatePathForDeletion("/home/dev/Documents/report"); err == nil {
		t.Error("expected direct child of protected path to be refused")
	}
	if err := pv.ValidatePathForDeletion("/home/dev/Documents/app/node_modules"); err != nil {
		t.Errorf("expected deep path to be allowed, got: %v", err)
	}
}

func TestIsProtectedPath(t *testing.T) {
	pv := NewPathValidator()

	tests := []struct {
		name        string
		path        string
		isProtected bool
	}{
		{"root directory", "/", true},
		{"etc directory", "/etc", true},
		{"usr directory", "/usr", true},
		{"system directory (macOS)", "/System", true},
		{"file in etc", "/etc/hosts", true},
		{"file in usr", "/usr/bin/ls", true},
		{"temp file", "/tmp/test.txt", false},
		{"var cache", "/var/cache/test", true}, // /var is protected
		{"user cache", "/Users/test/.cache/test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pv.IsProtectedPath(tt.path)
			if result != tt.isProtected {
				t.Errorf("IsProtectedPath(%s) = %v, want %v", tt.path, result, tt.isProtected)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/a", "/a/b", true},
		{"/a", "/a/b/c", true},
		{"/a", "/a", false},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
		{"/a", "/a/..b", true},
	}

	for _, tt := range tests {
		if got := IsWithin(tt.root, tt.path); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}

func TestValidateGlobPattern(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		shouldError bool
	}{
		{"simple wildcard", "*.txt", false},
		{"character class", "[abc]*.txt", false},
		{"question mark", "file?.txt", false},
		{"empty pattern", "", false},
		{"invalid syntax - unmatched bracket", "[abc", true},
		{"pattern with traversal", "../*.txt", true},
		{"absolute path pattern", "/Users/*/Library/Caches/com.apple.*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlobPattern(tt.pattern)

			if tt.shouldError && err == nil {
				t.Errorf("Expected error for pattern '%s', got nil", tt.pattern)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error for pattern '%s', got: %v", tt.pattern, err)
			}
		})
	}
}

func TestPathCleaning(t *testing.T) {
	pv := NewPathValidator()

	tests := []struct {
		name        string
		path        string
		shouldError bool
	}{
		{"path with dot segments", "/tmp/../var/test.txt", true},
		{"path with double slashes", "/tmp//test//file.txt", true},
		{"path with trailing slash", "/tmp/test/", true},
		{"clean absolute path", "/tmp/test.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidatePathForDeletion(tt.path)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for path '%s', got nil", tt.path)
				} else if !strings.Contains(err.Error(), "suspicious elements") {
					t.Errorf("Expected suspicious elements error, got '%s'", err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error for path '%s', got: %v", tt.path, err)
			}
		})
	}
}
