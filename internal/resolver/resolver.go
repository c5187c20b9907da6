//
// locates the grading standard that applies to an assignment
// by searching the course and then each ancestor account in turn.
//
package resolver

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-gradesync/internal/scheme"
	"github.com/nsip/otf-gradesync/internal/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when no scope in the hierarchy defines the standard.
var ErrNotFound = errors.New("grading standard not found")

// Context holds the inputs to a single resolution.
type Context struct {
	CourseID       string
	AssignmentID   string
	PointsPossible float64
}

type Resolver struct {
	fetch  Fetcher
	logger *log.Logger
}

func New(f Fetcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New("resolver")
	}
	return &Resolver{fetch: f, logger: logger}
}

//
// walks course scope then the account chain upward until a
// grading standard is found or the root account is passed.
//
// Per-scope failures are treated as "not defined here". Only exhausting
// the hierarchy (or an assignment without a standard) yields ErrNotFound.
// A cancelled ctx stops the walk before the next hop.
//
func (r *Resolver) Resolve(ctx context.Context, rc Context) (scheme.Standard, error) {

	defer util.TimeTrack(time.Now(), "resolve "+rc.CourseID+"/"+rc.AssignmentID)

	if rc.CourseID == "" || rc.AssignmentID == "" {
		return scheme.Standard{}, errors.New("course and assignment ids are required")
	}

	asg := r.fetch.Assignment(ctx, rc.CourseID, rc.AssignmentID)
	if !asg.Found() {
		return scheme.Standard{}, errors.Wrapf(ErrNotFound, "assignment %s lookup %s", rc.AssignmentID, asg.Outcome)
	}
	standardID := asg.Body.Get("grading_standard_id")
	if !standardID.Exists() || standardID.Type == gjson.Null || standardID.String() == "" {
		return scheme.Standard{}, errors.Wrapf(ErrNotFound, "assignment %s has no grading_standard_id", rc.AssignmentID)
	}
	gsID := standardID.String()

	if std, ok := r.standardAt(ctx, CourseScope, rc.CourseID, gsID); ok {
		return std, nil
	}

	if err := live(ctx); err != nil {
		return scheme.Standard{}, err
	}
	course := r.fetch.Course(ctx, rc.CourseID)
	if !course.Found() {
		return scheme.Standard{}, errors.Wrapf(ErrNotFound, "course %s lookup %s", rc.CourseID, course.Outcome)
	}

	visited := map[string]bool{}
	accountID := course.Body.Get("account_id").String()
	for accountID != "" {
		if visited[accountID] {
			r.logger.Warnf("account %s seen twice while ascending, stopping", accountID)
			break
		}
		visited[accountID] = true

		if err := live(ctx); err != nil {
			return scheme.Standard{}, err
		}
		if std, ok := r.standardAt(ctx, AccountScope, accountID, gsID); ok {
			return std, nil
		}

		if err := live(ctx); err != nil {
			return scheme.Standard{}, err
		}
		acct := r.fetch.Account(ctx, accountID)
		if !acct.Found() {
			r.logger.Debugf("account %s lookup %s", accountID, acct.Outcome)
			break
		}
		accountID = acct.Body.Get("parent_account_id").String()
	}

	return scheme.Standard{}, errors.Wrapf(ErrNotFound, "standard %s in course %s", gsID, rc.CourseID)
}

func (r *Resolver) standardAt(ctx context.Context, scope Scope, scopeID, standardID string) (scheme.Standard, bool) {

	res := r.fetch.GradingStandard(ctx, scope, scopeID, standardID)
	if !res.Found() {
		r.logger.Debugf("standard %s not at %s/%s: %s", standardID, scope, scopeID, res.Outcome)
		return scheme.Standard{}, false
	}

	std, err := scheme.FromJSON(res.Body)
	if err != nil {
		r.logger.Warnf("standard %s at %s/%s is unusable: %v", standardID, scope, scopeID, err)
		return scheme.Standard{}, false
	}

	return std, true
}

func live(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "resolution abandoned")
	}
	return nil
}
