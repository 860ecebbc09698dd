package scanner

import (
	"os/exec"
	"testing"

	"github.com/fenilsonani/cache-cleaner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSizeProbe(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{ProbeBlocks, false},
		{ProbeDu, false},
		{"logical", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			probe, err := NewSizeProbe(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, probe)
		})
	}

	probe, _ := NewSizeProbe(ProbeDu)
	assert.IsType(t, DuProbe{}, probe)
}

func TestDuProbe(t *testing.T) {
	if _, err := exec.LookPath("du"); err != nil {
		t.Skip("du not available")
	}

	f := testutil.NewFixture(t)
	f.CreateSizedFile("cache/a", 64<<10)
	f.CreateSizedFile("cache/b/c", 16<<10)

	size, err := DuProbe{}.Size(f.Path("cache"))
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
	assert.Zero(t, size%1024)
}

func TestDuProbe_MissingPath(t *testing.T) {
	if _, err := exec.LookPath("du"); err != nil {
		t.Skip("du not available")
	}

	f := testutil.NewFixture(t)
	_, err := DuProbe{}.Size(f.Path("missing"))
	assert.Error(t, err)
}
