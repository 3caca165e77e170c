// Package averror defines the typed errors surfaced by the transcoder.
//
// Every failure that crosses the native engine boundary is classified into
// one of a closed set of kinds. Each kind is bound to a message template that
// is translated with go-l10n.
package averror

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ideamans/go-l10n"
)

// Kind names a registered error kind.
type Kind string

const (
	// BadArguments means the caller passed no or invalid transcoding options.
	BadArguments Kind = "BadArguments"
	// NativeError means the native engine reported or raised a failure.
	// Unrecognized native codes are folded into this kind.
	NativeError Kind = "NativeError"
	// OutOfMemory means the native engine could not allocate a resource.
	OutOfMemory Kind = "OutOfMemory"
	// Aborted means the session was cancelled before the engine finished.
	Aborted Kind = "Aborted"
)

var templates = map[Kind]string{
	BadArguments: "No transcoding options specified!",
	NativeError:  "An error occurred in the native layer!",
	OutOfMemory:  "The native layer ran out of memory!",
	Aborted:      "The transcoding session was aborted!",
}

// ErrUnknownKind is returned by Make when asked for a kind that is not
// registered. It indicates a programming fault, not a runtime condition.
var ErrUnknownKind = errors.New("averror: unknown error kind")

// Error is a typed transcoder error.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind.
// This lets callers match with errors.Is(err, averror.Must(averror.NativeError)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Option customizes an Error at construction time.
type Option func(*Error)

// WithMessage overrides the kind's default message.
func WithMessage(msg string) Option {
	return func(e *Error) {
		e.Message = msg
	}
}

// WithContext attaches a diagnostic value under key.
func WithContext(key string, value any) Option {
	return func(e *Error) {
		if e.Context == nil {
			e.Context = make(map[string]any)
		}
		e.Context[key] = value
	}
}

// WithArguments attaches the offending arguments for diagnostics.
func WithArguments(args any) Option {
	return WithContext("arguments", args)
}

// WithCause wraps an underlying error.
func WithCause(err error) Option {
	return func(e *Error) {
		e.cause = err
	}
}

// Make constructs a typed error of the given kind.
// It fails with ErrUnknownKind if kind is not registered.
func Make(kind Kind, opts ...Option) (*Error, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	e := &Error{
		Kind:    kind,
		Message: l10n.T(tmpl),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Must is like Make but panics on an unregistered kind.
// Use it only with the Kind constants declared in this package.
func Must(kind Kind, opts ...Option) *Error {
	e, err := Make(kind, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Registered reports whether kind is a registered error kind.
func Registered(kind Kind) bool {
	_, ok := templates[kind]
	return ok
}

// Kinds returns all registered kinds in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// FromCode classifies an error code reported by the native engine.
// Codes naming a registered kind map to that kind; anything else becomes a
// NativeError with the raw code kept in the error context.
func FromCode(code, detail string) *Error {
	var opts []Option
	if detail != "" {
		opts = append(opts, WithContext("detail", detail))
	}

	kind := Kind(code)
	if !Registered(kind) {
		kind = NativeError
		if code != "" {
			opts = append(opts, WithContext("code", code))
		}
	}
	return Must(kind, opts...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
