package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateNameAndID(t *testing.T) {
	if GenerateName() == "" {
		t.Error("expected a generated name")
	}
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct ids, got %q and %q", a, b)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing accept header")
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"message":"The specified resource does not exist."}]}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	headers := map[string]string{"Accept": "application/json"}

	status, body, err := Fetch(context.Background(), srv.Client(), "GET", srv.URL+"/found", headers, nil)
	if err != nil || status != 200 || string(body) != `{"ok":true}` {
		t.Errorf("unexpected result: %d %s %v", status, body, err)
	}

	status, body, err = Fetch(context.Background(), srv.Client(), "GET", srv.URL+"/missing", headers, nil)
	if err == nil || status != 404 || len(body) == 0 {
		t.Errorf("expected 404 with body and error, got %d %s %v", status, body, err)
	}
}

func TestAvailablePort(t *testing.T) {
	port, err := AvailablePort()
	if err != nil || port == 0 {
		t.Errorf("AvailablePort() = %d, %v", port, err)
	}
}
