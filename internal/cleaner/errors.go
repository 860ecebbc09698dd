package cleaner

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
)

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorInvalidPath
	ErrorSpecialFile
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorSpecialFile:
		return "Special file"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// Label is a short snake_case form used as a metrics label
func (e ErrorReason) Label() string {
	return strings.ReplaceAll(strings.ToLower(e.String()), " ", "_")
}

// DeletionError represents a failed deletion of one cache item
type DeletionError struct {
	Path      string
	Reason    ErrorReason
	Original  error
	Retryable bool
	NeedsSudo bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		if e.NeedsSudo {
			return fmt.Sprintf("⚠️  Owned by another user, skipped: %s", e.Path)
		}
		return fmt.Sprintf("⚠️  Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("⚠️  In use: %s (quit the application and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("ℹ️  Already gone: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("❌ Refused unsafe path: %s (%v)", e.Path, e.Original)
	case ErrorSpecialFile:
		return fmt.Sprintf("❌ Refused special file: %s", e.Path)
	default:
		return fmt.Sprintf("❌ Error deleting %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	switch {
	case os.IsNotExist(err):
		delErr.Reason = ErrorFileNotFound
		return delErr
	case os.IsPermission(err):
		delErr.Reason = ErrorPermissionDenied
		delErr.NeedsSudo = true
		return delErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ErrorPermissionDenied
			delErr.NeedsSudo = true
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorFileInUse
			delErr.Retryable = true
		case syscall.ENOENT:
			delErr.Reason = ErrorFileNotFound
		}
	}

	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errs []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*DeletionError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	reasons := make([]ErrorReason, 0, len(grouped))
	for reason := range grouped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	var b strings.Builder
	b.WriteString("\n⚠️  Items left in place:\n")
	for i, reason := range reasons {
		branch := "├─"
		if i == len(reasons)-1 {
			branch = "└─"
		}
		fmt.Fprintf(&b, "   %s %s: %d\n", branch, reason, len(grouped[reason]))

		switch reason {
		case ErrorPermissionDenied:
			b.WriteString("   │  └─ Tip: these belong to another user; check ownership\n")
		case ErrorFileInUse:
			b.WriteString("   │  └─ Tip: close the owning application and retry\n")
		}
	}

	return b.String()
}
