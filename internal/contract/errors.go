package contract

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes surfaced by gmap.
type ErrorKind int

// All error kinds.
const (
	KindOther ErrorKind = iota
	KindOpen
	KindResolve
	KindDecode
	KindIO
	KindSchemaMismatch
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrOther          = errors.New("gmap error")
	ErrOpen           = errors.New("repository open failed")
	ErrResolve        = errors.New("revision resolution failed")
	ErrDecode         = errors.New("object decode failed")
	ErrIO             = errors.New("cache i/o failed")
	ErrSchemaMismatch = errors.New("cache schema version mismatch")
)

var kindSentinels = map[ErrorKind]error{
	KindOther:          ErrOther,
	KindOpen:           ErrOpen,
	KindResolve:        ErrResolve,
	KindDecode:         ErrDecode,
	KindIO:             ErrIO,
	KindSchemaMismatch: ErrSchemaMismatch,
}

// Error carries a kind, the failing operation and an optional source error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError builds an Error. err may be nil.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error whose source is a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the source error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of the first Error in err's chain, or KindOther.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsFatal reports whether err must stop the process immediately.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOpen) || errors.Is(err, ErrSchemaMismatch)
}
