package cleaner

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/security"
	"github.com/rs/zerolog"
)

// Cleaner deletes cache items. It satisfies the engine's Remover.
type Cleaner struct {
	validator   *security.PathValidator
	logger      zerolog.Logger
	retryDelays []time.Duration
	removeAll   func(path string) error
	manifest    *DeletionManifest
}

// New creates a new Cleaner that refuses anything validator rejects
func New(validator *security.PathValidator, logger zerolog.Logger) *Cleaner {
	return &Cleaner{
		validator: validator,
		logger:    logger.With().Str("component", "cleaner").Logger(),
		retryDelays: []time.Duration{
			100 * time.Millisecond,
			500 * time.Millisecond,
			2 * time.Second,
		},
		removeAll: os.RemoveAll,
		manifest:  NewDeletionManifest(),
	}
}

// RemoveAll deletes path and everything below it. Symlinks are removed
// as links and never followed. Failures come back as *DeletionError.
func (c *Cleaner) RemoveAll(path string) error {
	if err := c.validator.ValidatePathForDeletion(path); err != nil {
		return &DeletionError{Path: path, Reason: ErrorInvalidPath, Original: err}
	}

	if err := IsSafeToDelete(path); err != nil {
		return err
	}

	if delErr := c.removeWithRetry(path); delErr != nil {
		c.logger.Debug().Str("path", path).Str("reason", delErr.Reason.String()).Err(delErr.Original).Msg("delete failed")
		return delErr
	}

	c.manifest.Add(path)
	return nil
}

// removeWithRetry retries transient failures such as EBUSY. An item that was
// only partly removed before a permanent failure still counts as failed.
func (c *Cleaner) removeWithRetry(path string) *DeletionError {
	var lastErr *DeletionError

	for attempt := 0; attempt <= len(c.retryDelays); attempt++ {
		err := c.removeAll(path)
		if err == nil {
			return nil
		}

		lastErr = CategorizeError(path, err)
		if !lastErr.Retryable || attempt == len(c.retryDelays) {
			break
		}
		time.Sleep(c.retryDelays[attempt])
	}

	return lastErr
}

// Manifest returns the record of everything this cleaner deleted
func (c *Cleaner) Manifest() *DeletionManifest {
	return c.manifest
}

// AsDeletionError extracts a *DeletionError from err, wrapping unknown errors
func AsDeletionError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}
	var delErr *DeletionError
	if errors.As(err, &delErr) {
		return delErr
	}
	return CategorizeError(path, err)
}

// DeletionManifest keeps track of deleted paths
type DeletionManifest struct {
	mu        sync.Mutex
	Entries   []DeletedEntry
	Timestamp time.Time
}

// DeletedEntry is one deleted path
type DeletedEntry struct {
	Path      string
	DeletedAt time.Time
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest() *DeletionManifest {
	return &DeletionManifest{Timestamp: time.Now()}
}

// Add records a deleted path
func (m *DeletionManifest) Add(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, DeletedEntry{Path: path, DeletedAt: time.Now()})
}

// Len returns the number of recorded deletions
func (m *DeletionManifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// Save writes the manifest as plain text
func (m *DeletionManifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Deletion Manifest\n")
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Items: %d\n\n", len(m.Entries))

	for _, e := range m.Entries {
		fmt.Fprintf(file, "%s | %s\n", e.Path, e.DeletedAt.Format(time.RFC3339))
	}

	return file.Sync()
}
