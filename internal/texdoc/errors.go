package texdoc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies the fatal conditions an analysis run can hit. Every
// kind aborts the run; dependency cycles are warnings, not errors, and are
// reported on the result instead.
type ErrorKind string

const (
	ErrMissingFile            ErrorKind = "missing_file"
	ErrInclusionCycle         ErrorKind = "inclusion_cycle"
	ErrMalformedEnvironment   ErrorKind = "malformed_environment"
	ErrDuplicateLabel         ErrorKind = "duplicate_label"
	ErrUnresolvedProvesTarget ErrorKind = "unresolved_proves_target"
	ErrOrphanProof            ErrorKind = "orphan_proof"
	ErrUnresolvedUsesLabel    ErrorKind = "unresolved_uses_label"
)

// Error is the structured failure surfaced to callers: kind, the offending
// label or path, and the source location when one is known, so the shell can
// display it without re-deriving context.
type Error struct {
	Kind   ErrorKind
	Label  string   // offending statement label, if any
	Path   string   // offending file path, if any
	Loc    Location // where the problem was encountered
	Detail string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	switch {
	case e.Label != "":
		fmt.Fprintf(&sb, ": %q", e.Label)
	case e.Path != "":
		fmt.Fprintf(&sb, ": %s", e.Path)
	}
	if e.Loc.File != "" {
		fmt.Fprintf(&sb, " at %s", e.Loc)
	}
	if e.Detail != "" {
		sb.WriteString(" (" + e.Detail + ")")
	}
	return sb.String()
}

// KindOf extracts the taxonomy kind from err, or "" if err is not a
// structured analysis error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
