package apiclient

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// MsgUnreachable is shown whenever no response was obtained at all.
	MsgUnreachable = "Server unreachable"
)

// RejectedError means the backend answered with a non-success status.
// Detail carries the backend's own message when it sent one.
type RejectedError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("%s rejected with status %d", e.Op, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RejectedError) Unwrap() error { return e.Err }

// UnreachableError means the request never got a response.
type UnreachableError struct {
	Op  string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: server unreachable: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// PreconditionError is raised locally, before any request is made.
type PreconditionError struct {
	Op      string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

func IsUnreachable(err error) bool {
	var u *UnreachableError
	return errors.As(err, &u)
}

func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}

// UserMessage maps an outcome error to the text shown to the user.
// Rejections use the backend detail and fall back to the per-operation
// message; unreachable is always MsgUnreachable.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var (
		p *PreconditionError
		r *RejectedError
		u *UnreachableError
	)

	switch {
	case errors.As(err, &p):
		return p.Message
	case errors.As(err, &u):
		return MsgUnreachable
	case errors.As(err, &r):
		if r.Detail != "" {
			return r.Detail
		}
	}

	return fallback
}
