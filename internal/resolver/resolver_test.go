package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

/* ---------------- in-memory canvas that satisfies Fetcher ---------------- */

type fakeCanvas struct {
	assignment string            // assignment payload, "" for a failed lookup
	courseStd  string            // course-scoped standard payload
	accountOf  string            // course's account id
	parents    map[string]string // account -> parent ("" for root)
	standards  map[string]string // account -> standard payload
	errorShape map[string]bool   // account -> standard answered with an error payload

	standardCalls []string
	accountCalls  []string
}

func found(body string) Lookup {
	return Lookup{Outcome: Found, Body: gjson.Parse(body)}
}

func (f *fakeCanvas) Assignment(_ context.Context, _, _ string) Lookup {
	if f.assignment == "" {
		return Lookup{Outcome: Failed, Err: errors.New("boom")}
	}
	return found(f.assignment)
}

func (f *fakeCanvas) GradingStandard(_ context.Context, scope Scope, scopeID, _ string) Lookup {
	f.standardCalls = append(f.standardCalls, fmt.Sprintf("%s/%s", scope, scopeID))
	if scope == CourseScope {
		if f.courseStd == "" {
			return Lookup{Outcome: Absent, Body: gjson.Parse(`{"errors":[]}`)}
		}
		return found(f.courseStd)
	}
	if f.errorShape[scopeID] {
		return Lookup{Outcome: Absent, Body: gjson.Parse(`{"errors":[{"message":"nope"}]}`)}
	}
	if s, ok := f.standards[scopeID]; ok {
		return found(s)
	}
	return Lookup{Outcome: Failed, Err: errors.New("404")}
}

func (f *fakeCanvas) Course(_ context.Context, _ string) Lookup {
	return found(fmt.Sprintf(`{"account_id": %q}`, f.accountOf))
}

func (f *fakeCanvas) Account(_ context.Context, accountID string) Lookup {
	f.accountCalls = append(f.accountCalls, accountID)
	parent, ok := f.parents[accountID]
	if !ok {
		return Lookup{Outcome: Failed, Err: errors.New("no such account")}
	}
	if parent == "" {
		return found(`{"parent_account_id": null}`)
	}
	return found(fmt.Sprintf(`{"parent_account_id": %q}`, parent))
}

// chain of n accounts: a1 -> a2 -> ... -> an (root)
func chain(n int) map[string]string {
	parents := map[string]string{}
	for i := 1; i <= n; i++ {
		parent := ""
		if i < n {
			parent = fmt.Sprintf("a%d", i+1)
		}
		parents[fmt.Sprintf("a%d", i)] = parent
	}
	return parents
}

const (
	asgWithStd = `{"id": 3, "grading_standard_id": 12}`
	letters    = `{"id": 12, "grading_scheme": [{"name":"A","value":0.9},{"name":"B","value":0.8},{"name":"C","value":0.7}]}`
)

var rc = Context{CourseID: "7", AssignmentID: "3", PointsPossible: 100}

func TestResolveCourseScope(t *testing.T) {
	f := &fakeCanvas{assignment: asgWithStd, courseStd: letters}

	std, err := New(f, nil).Resolve(context.Background(), rc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(std.Tiers) != 3 || std.Tiers[0].Name != "A" {
		t.Errorf("unexpected standard: %+v", std)
	}
	if len(f.accountCalls) != 0 {
		t.Errorf("no account lookups expected, got %v", f.accountCalls)
	}
}

func TestResolveExhaustsHierarchy(t *testing.T) {
	for _, depth := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			f := &fakeCanvas{assignment: asgWithStd, accountOf: "a1", parents: chain(depth)}

			_, err := New(f, nil).Resolve(context.Background(), rc)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
			// one course-scope lookup plus exactly one per account
			if got := len(f.standardCalls) - 1; got != depth {
				t.Errorf("account-scope lookups = %d, want %d (%v)", got, depth, f.standardCalls)
			}
			if len(f.accountCalls) != depth {
				t.Errorf("account fetches = %d, want %d", len(f.accountCalls), depth)
			}
		})
	}
}

func TestResolveStopsAtFirstMatch(t *testing.T) {
	f := &fakeCanvas{
		assignment: asgWithStd,
		accountOf:  "a1",
		parents:    chain(4),
		standards:  map[string]string{"a2": letters, "a4": letters},
		errorShape: map[string]bool{"a1": true},
	}

	std, err := New(f, nil).Resolve(context.Background(), rc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if std.ID != "12" {
		t.Errorf("unexpected standard %+v", std)
	}
	want := []string{"courses/7", "accounts/a1", "accounts/a2"}
	if fmt.Sprint(f.standardCalls) != fmt.Sprint(want) {
		t.Errorf("standard lookups = %v, want %v", f.standardCalls, want)
	}
	if fmt.Sprint(f.accountCalls) != "[a1]" {
		t.Errorf("account fetches = %v, want [a1]", f.accountCalls)
	}
}

func TestResolveSkipsInvalidStandard(t *testing.T) {
	f := &fakeCanvas{
		assignment: asgWithStd,
		courseStd:  `{"id": 12, "grading_scheme": []}`,
		accountOf:  "a1",
		parents:    chain(1),
		standards:  map[string]string{"a1": letters},
	}

	if _, err := New(f, nil).Resolve(context.Background(), rc); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestResolveWithoutStandardID(t *testing.T) {
	for name, asg := range map[string]string{
		"missing": `{"id": 3}`,
		"null":    `{"id": 3, "grading_standard_id": null}`,
		"failed":  "",
	} {
		t.Run(name, func(t *testing.T) {
			f := &fakeCanvas{assignment: asg, courseStd: letters}
			_, err := New(f, nil).Resolve(context.Background(), rc)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
			if len(f.standardCalls) != 0 {
				t.Errorf("no standard lookups expected, got %v", f.standardCalls)
			}
		})
	}
}

func TestResolveCyclicAccounts(t *testing.T) {
	f := &fakeCanvas{
		assignment: asgWithStd,
		accountOf:  "a1",
		parents:    map[string]string{"a1": "a2", "a2": "a1"},
	}
	if _, err := New(f, nil).Resolve(context.Background(), rc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if len(f.accountCalls) != 2 {
		t.Errorf("account fetches = %v", f.accountCalls)
	}
}

func TestResolveCancelled(t *testing.T) {
	f := &fakeCanvas{assignment: asgWithStd, accountOf: "a1", parents: chain(3)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f, nil).Resolve(ctx, rc)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want cancellation error, got %v", err)
	}
	if len(f.accountCalls) != 0 {
		t.Errorf("no hops expected after cancel, got %v", f.accountCalls)
	}
}

func TestResolveRequiresIDs(t *testing.T) {
	if _, err := New(&fakeCanvas{}, nil).Resolve(context.Background(), Context{}); err == nil {
		t.Error("expected error")
	}
}
