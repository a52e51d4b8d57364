package types

import (
	"errors"
	"fmt"
)

// Kind classifies collaborator failures so callers can decide between
// retrying the cycle, skipping a symbol, or absorbing an empty result.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindNotFound
	KindMalformed
	KindPolicy
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindPolicy:
		return "policy"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Transient(op string, err error) error { return NewError(KindTransient, op, err) }

func NotFound(op string, err error) error { return NewError(KindNotFound, op, err) }

func Policy(op string, err error) error { return NewError(KindPolicy, op, err) }

// KindOf returns the kind of the first *Error in the chain. Errors that carry
// no kind are treated as transient: an unclassified failure retries the cycle.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }
