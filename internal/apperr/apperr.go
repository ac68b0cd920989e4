// Package apperr defines the failure kinds a notifier run can end with.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a coarse failure category. It implements error so callers can
// match with errors.Is(err, apperr.QueryFailed).
type Kind string

const (
	ConfigMissing    Kind = "required configuration missing"
	QueryFailed      Kind = "billing query failed"
	NoResultBucket   Kind = "billing report has no result bucket"
	MissingTotals    Kind = "billing result has no totals"
	MetricNotFound   Kind = "metric not found in totals"
	AmountParseError Kind = "amount is not a number"
	DeliveryFailed   Kind = "chat delivery failed"
)

func (k Kind) Error() string {
	return string(k)
}

// Error carries a Kind together with the underlying cause
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New builds an *Error. op and cause may be empty.
func New(kind Kind, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error's Kind
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}
