package resolver

import (
	"context"

	"github.com/tidwall/gjson"
)

// Outcome tags the result of a single remote read.
type Outcome int

const (
	// the resource was returned
	Found Outcome = iota
	// the call succeeded but the payload describes an error (not found, unauthorised...)
	Absent
	// transport or http level failure
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Lookup is the tagged result of a remote read.
type Lookup struct {
	Outcome Outcome
	Body    gjson.Result
	Err     error
}

func (l Lookup) Found() bool {
	return l.Outcome == Found
}

// Scope is the kind of context a grading standard is looked up in.
type Scope string

const (
	CourseScope  Scope = "courses"
	AccountScope Scope = "accounts"
)

//
// the remote reads the resolver depends on.
// implementations must never panic on a missing resource, every
// failure is reported through the Lookup outcome.
//
type Fetcher interface {
	Assignment(ctx context.Context, courseID, assignmentID string) Lookup
	GradingStandard(ctx context.Context, scope Scope, scopeID, standardID string) Lookup
	Course(ctx context.Context, courseID string) Lookup
	Account(ctx context.Context, accountID string) Lookup
}
