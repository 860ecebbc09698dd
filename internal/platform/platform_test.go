package platform

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	got := Detect()
	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, MacOS, got)
	case "linux":
		assert.Equal(t, Linux, got)
	default:
		assert.Equal(t, Unknown, got)
	}
}

func TestInfoFor(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		wantErr  error
		contains string
	}{
		{"macos", MacOS, nil, filepath.Join("/Users/dev", "Documents")},
		{"linux", Linux, nil, filepath.Join("/Users/dev", ".ssh")},
		{"unknown", Unknown, ErrUnsupportedPlatform, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := InfoFor(tt.platform, "/Users/dev", "dev")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, info)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.platform, info.OS)
			assert.Equal(t, "/Users/dev", info.HomeDir)
			assert.Contains(t, info.ProtectedPaths, "/")
			assert.Contains(t, info.ProtectedPaths, tt.contains)
		})
	}
}

func TestDiskSpace(t *testing.T) {
	space, err := DiskSpace(t.TempDir())
	require.NoError(t, err)

	assert.Greater(t, space.Total, uint64(0))
	assert.LessOrEqual(t, space.Free, space.Total)
	assert.Equal(t, space.Total-space.Free, space.Used())
}

func TestDiskSpace_MissingPath(t *testing.T) {
	_, err := DiskSpace(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestGetUserConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetUserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache-cleaner"), got)
}
