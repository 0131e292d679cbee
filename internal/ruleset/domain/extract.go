package domain

import (
	"errors"
	"fmt"
)

// WarningKind classifies why a source line produced no hostname.
type WarningKind uint8

const (
	// WarningNoHost means the line parsed as a URL but had no authority component.
	WarningNoHost WarningKind = iota
	// WarningMalformed means the URL parser rejected the line.
	WarningMalformed
)

// String returns a stable string representation of the warning kind.
func (k WarningKind) String() string {
	switch k {
	case WarningNoHost:
		return "no_host"
	case WarningMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("WarningKind(%d)", k)
	}
}

// ErrNoHost is the cause attached to WarningNoHost warnings.
var ErrNoHost = errors.New("could not extract domain from URL")

// ParseWarning describes a source line that was skipped. It is never fatal.
type ParseWarning struct {
	Line int    // 1-based line number in the source text
	Raw  string // trimmed line content
	Kind WarningKind
	Err  error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("line %d %q: %s: %v", w.Line, w.Raw, w.Kind, w.Err)
}

func (w ParseWarning) Unwrap() error { return w.Err }

// ExtractResult is the outcome for one non-empty source line:
// either Host is set, or Warning is non-nil.
type ExtractResult struct {
	Line    int
	Host    string
	Warning *ParseWarning
}

// OK reports whether the line yielded a hostname.
func (r ExtractResult) OK() bool { return r.Warning == nil && r.Host != "" }
