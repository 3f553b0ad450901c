// Package approval abstracts the authority that decides whether a review
// request is approved. Currently just Review Board.
package approval

import (
	"context"
	"fmt"
)

type Status int

const (
	_ Status = iota

	Approved
	NotApproved
	QueryFailed
)

func (s Status) String() string {
	switch s {
	case Approved:
		return "approved"
	case NotApproved:
		return "not approved"
	case QueryFailed:
		return "query failed"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}

// Result is the outcome of checking one review request.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func Approve() Result {
	return Result{Status: Approved}
}

func Reject(reason string) Result {
	return Result{Status: NotApproved, Reason: reason}
}

// Fail wraps an error that kept the approval state from being determined.
func Fail(err error) Result {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return Result{Status: QueryFailed, Reason: reason}
}

func (r Result) OK() bool { return r.Status == Approved }

func (r Result) String() string {
	if r.Reason == "" {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Reason)
}

// Interface is implemented by approval authorities. Implementations must not
// return errors or panic: every failure is reported as a QueryFailed result.
type Interface interface {
	CheckApproval(ctx context.Context, reviewRequestID string) Result
}
