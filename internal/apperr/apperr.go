// Package apperr defines the closed set of error kinds shared by every layer.
// Layers wrap causes with fmt.Errorf internally and assign a kind at their
// boundary; the HTTP layer maps kinds to statuses in one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindStorage
	KindValidation
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStorage:
		return "storage"
	case KindValidation:
		return "validation"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error carries a kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) error { return newError(KindConfiguration, op, err) }

func Storage(op string, err error) error { return newError(KindStorage, op, err) }

func Validation(op string, err error) error { return newError(KindValidation, op, err) }

func Collaborator(op string, err error) error { return newError(KindCollaborator, op, err) }

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
