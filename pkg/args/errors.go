package args

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrBadArgument is wrapped by every built-in converter failure.
	ErrBadArgument = errors.New("bad argument")
	// ErrNotFound is returned by resolvers when no entity matches.
	ErrNotFound = errors.New("entity not found")
	// ErrAmbiguous is returned by resolvers when several entities match.
	ErrAmbiguous = errors.New("entity is ambiguous")
)

// BindError is the single terminal error of a failed binding. Err holds one
// of the typed errors below, or the context error on cancellation.
type BindError struct {
	Command string
	Param   string
	Err     error
}

func (e *BindError) Error() string {
	switch {
	case e.Command != "" && e.Param != "":
		return fmt.Sprintf("command %q: parameter %q: %v", e.Command, e.Param, e.Err)
	case e.Command != "":
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	case e.Param != "":
		return fmt.Sprintf("parameter %q: %v", e.Param, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *BindError) Unwrap() error { return e.Err }

// MissingArgumentError means the input ran out before a required parameter.
type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument for %s", e.Param)
}

// ConversionError means a required single-type conversion failed.
type ConversionError struct {
	Param string
	Type  reflect.Type
	Raw   string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert %q into %s: %v", e.Raw, TypeName(e.Type), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// UnionConversionError means every member of a union failed on one token.
// Errs is parallel to Types.
type UnionConversionError struct {
	Param string
	Types []reflect.Type
	Raw   string
	Errs  []error
}

func (e *UnionConversionError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = TypeName(t)
	}
	return fmt.Sprintf("could not convert %q into %s", e.Raw, joinOr(names))
}

func (e *UnionConversionError) Unwrap() []error { return e.Errs }

// ResolveFailure classifies an entity resolution failure.
type ResolveFailure int

const (
	NotFound ResolveFailure = iota
	Ambiguous
	Failed
)

func (f ResolveFailure) String() string {
	switch f {
	case NotFound:
		return "not found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "failed"
	}
}

// ResolverError wraps a failure of the injected entity resolver.
type ResolverError struct {
	Kind   ResolveFailure
	Entity EntityKind
	Param  string
	Raw    string
	Err    error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Entity, e.Raw, e.Kind)
}

func (e *ResolverError) Unwrap() error { return e.Err }

// SignatureError is a structural problem found while building a signature.
type SignatureError struct {
	Param  string
	Reason string
}

func (e *SignatureError) Error() string {
	if e.Param == "" {
		return "invalid signature: " + e.Reason
	}
	return fmt.Sprintf("invalid signature: parameter %q: %s", e.Param, e.Reason)
}

// TooManyArgumentsError is returned when surplus tokens are rejected.
type TooManyArgumentsError struct {
	Surplus []string
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("too many arguments: %d unused", len(e.Surplus))
}

func badArgument(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrBadArgument, fmt.Sprintf(format, a...))
}

func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}
