package canvas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nsip/otf-gradesync/internal/resolver"
)

func newCanvas(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/7/assignments/3", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"unauthenticated","errors":[{"message":"user authorization required"}]}`))
			return
		}
		w.Write([]byte(`{"id":3,"grading_standard_id":12}`))
	})
	mux.HandleFunc("/api/v1/accounts/1/grading_standards/12", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":12,"grading_scheme":[{"name":"A","value":0.9},{"name":"F","value":0}]}`))
	})
	mux.HandleFunc("/api/v1/courses/7/grading_standards/12", func(w http.ResponseWriter, r *http.Request) {
		// canvas answers some misses with a 200 error payload
		w.Write([]byte(`{"errors":[{"message":"The specified resource does not exist."}]}`))
	})
	mux.HandleFunc("/api/v1/courses/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"account_id":1}`))
	})
	mux.HandleFunc("/api/v1/accounts/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestClientLookups(t *testing.T) {
	srv := newCanvas(t)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/", Token: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	asg := c.Assignment(ctx, "7", "3")
	if !asg.Found() || asg.Body.Get("grading_standard_id").String() != "12" {
		t.Errorf("assignment: %+v", asg)
	}

	if got := c.GradingStandard(ctx, resolver.CourseScope, "7", "12"); got.Outcome != resolver.Absent {
		t.Errorf("course standard outcome = %s, want absent", got.Outcome)
	}
	if got := c.GradingStandard(ctx, resolver.AccountScope, "1", "12"); !got.Found() {
		t.Errorf("account standard outcome = %s, want found", got.Outcome)
	}
	if got := c.Course(ctx, "7"); got.Body.Get("account_id").String() != "1" {
		t.Errorf("course: %+v", got)
	}
	if got := c.Account(ctx, "1"); got.Outcome != resolver.Failed {
		t.Errorf("account outcome = %s, want failed", got.Outcome)
	}
	if got := c.Account(ctx, "99"); got.Found() {
		t.Errorf("unknown account should not be found")
	}
}

func TestClientUnauthorisedIsAbsent(t *testing.T) {
	srv := newCanvas(t)
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Assignment(context.Background(), "7", "3"); got.Outcome != resolver.Absent {
		t.Errorf("outcome = %s, want absent", got.Outcome)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without base url")
	}
}
