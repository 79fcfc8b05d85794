package report

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a compile failure.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindGrid
	KindUnsupported
	KindFormula
	KindIO
)

// String returns the rule name used for findings of this kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "CONFIG"
	case KindGrid:
		return "GRID"
	case KindUnsupported:
		return "UNSUPPORTED"
	case KindFormula:
		return "FORMULA"
	case KindIO:
		return "INPUT"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a compile failure pinned to an authored path.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, path, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Configf reports a structural, enum or constraint violation in the authored file.
func Configf(path, format string, args ...any) error {
	return newError(KindConfig, path, format, args...)
}

// Gridf reports an out-of-grid rectangle or overlapping panels.
func Gridf(path, format string, args ...any) error {
	return newError(KindGrid, path, format, args...)
}

// Unsupportedf reports a chart or panel kind the compiler does not implement.
func Unsupportedf(path, format string, args ...any) error {
	return newError(KindUnsupported, path, format, args...)
}

// Formulaf reports a malformed formula.
func Formulaf(path, format string, args ...any) error {
	return newError(KindFormula, path, format, args...)
}

// IO wraps a read, write or parse failure of path.
func IO(path string, cause error) error {
	return errors.WithStack(&Error{Kind: KindIO, Path: path, Message: cause.Error(), cause: cause})
}

// AtPath re-roots a path-less or relative error under prefix. Errors of
// other types are returned unchanged.
func AtPath(prefix string, err error) error {
	var e *Error
	if err == nil || prefix == "" || !errors.As(err, &e) {
		return err
	}
	cp := *e
	switch {
	case cp.Path == "":
		cp.Path = prefix
	case cp.Path[0] == '[':
		cp.Path = prefix + cp.Path
	default:
		cp.Path = prefix + "." + cp.Path
	}
	return errors.WithStack(&cp)
}

// KindOf returns the kind of err, or 0 when err is not a compile error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a compile error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// FindingFromError converts err into an error-severity finding.
func FindingFromError(file string, err error) Finding {
	var e *Error
	if errors.As(err, &e) {
		return NewError(e.Kind.String(), e.Message, Location{File: file, Path: e.Path})
	}
	return NewError("INTERNAL", err.Error(), Location{File: file})
}
