package scanner

//go:generate mockgen -destination=./mocks/scanner.go -package=mocks . SizeProbe

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SizeProbe measures the real on-disk footprint of a file or directory tree.
type SizeProbe interface {
	Size(path string) (int64, error)
}

// Probe kinds accepted by NewSizeProbe
const (
	ProbeBlocks = "blocks"
	ProbeDu     = "du"
)

// NewSizeProbe returns the probe named by kind. An empty kind selects the
// native block counter where the platform has one.
func NewSizeProbe(kind string) (SizeProbe, error) {
	switch kind {
	case "", ProbeBlocks:
		return newBlockProbe(), nil
	case ProbeDu:
		return DuProbe{}, nil
	default:
		return nil, fmt.Errorf("unknown size probe %q", kind)
	}
}

// DuProbe asks du(1) for the allocated size of a path.
type DuProbe struct{}

// Size runs `du -sk path` and converts the reported kilobytes to bytes.
// du exits non-zero when part of the tree is unreadable but still prints a
// total, which is used as long as it parses.
func (DuProbe) Size(path string) (int64, error) {
	cmd := exec.Command("du", "-sk", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	runErr := cmd.Run()

	fields := strings.Fields(out.String())
	if len(fields) == 0 {
		if runErr != nil {
			return 0, fmt.Errorf("du %s: %w", path, runErr)
		}
		return 0, fmt.Errorf("du %s: empty output", path)
	}

	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("du %s: unexpected output %q", path, fields[0])
	}
	return kb * 1024, nil
}
