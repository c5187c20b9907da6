//
// read-only canvas REST client providing the lookups
// the grading standard resolver needs.
//
package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-gradesync/internal/resolver"
	"github.com/nsip/otf-gradesync/internal/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

type Config struct {
	// base address of the canvas instance, e.g. https://school.instructure.com
	BaseURL string
	// canvas api access token, sent as a bearer token
	Token string
	// per-request timeout, the shared client timeout if zero
	Timeout time.Duration
}

type Client struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
	logger  *log.Logger
}

func New(cfg Config) (*Client, error) {

	if cfg.BaseURL == "" {
		return nil, errors.New("canvas base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid canvas base url")
	}

	shared := util.NetClient()
	hc := &http.Client{Transport: shared.Transport, Timeout: shared.Timeout}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, shared)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
		hc.Timeout = shared.Timeout
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	return &Client{
		base: base,
		http: hc,
		headers: map[string]string{
			"Accept": "application/json",
		},
		logger: log.New("canvas"),
	}, nil
}

func (c *Client) Assignment(ctx context.Context, courseID, assignmentID string) resolver.Lookup {
	return c.get(ctx, "courses", courseID, "assignments", assignmentID)
}

func (c *Client) GradingStandard(ctx context.Context, scope resolver.Scope, scopeID, standardID string) resolver.Lookup {
	return c.get(ctx, string(scope), scopeID, "grading_standards", standardID)
}

func (c *Client) Course(ctx context.Context, courseID string) resolver.Lookup {
	return c.get(ctx, "courses", courseID)
}

func (c *Client) Account(ctx context.Context, accountID string) resolver.Lookup {
	return c.get(ctx, "accounts", accountID)
}

func (c *Client) get(ctx context.Context, segments ...string) resolver.Lookup {

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := fmt.Sprintf("%s/api/v1/%s", c.base.String(), strings.Join(escaped, "/"))

	status, body, err := util.Fetch(ctx, c.http, http.MethodGet, target, c.headers, nil)
	if err != nil {
		c.logger.Debugf("GET %s: %v", target, err)
		// a 4xx with an error body is a definite answer, not a transport failure
		if status/100 == 4 && errorShaped(gjson.ParseBytes(body)) {
			return resolver.Lookup{Outcome: resolver.Absent, Body: gjson.ParseBytes(body), Err: err}
		}
		return resolver.Lookup{Outcome: resolver.Failed, Err: err}
	}

	if !gjson.ValidBytes(body) {
		return resolver.Lookup{Outcome: resolver.Failed, Err: errors.Errorf("GET %s: invalid json payload", target)}
	}
	res := gjson.ParseBytes(body)
	if errorShaped(res) {
		return resolver.Lookup{Outcome: resolver.Absent, Body: res, Err: errors.Errorf("GET %s: %s", target, errorMessage(res))}
	}

	return resolver.Lookup{Outcome: resolver.Found, Body: res}
}

//
// canvas reports some failures as successful responses
// carrying an errors array or a status marker
//
func errorShaped(res gjson.Result) bool {
	if !res.IsObject() {
		return true
	}
	if res.Get("errors").Exists() || res.Get("error_report_id").Exists() {
		return true
	}
	switch res.Get("status").String() {
	case "not_found", "unauthorized", "unauthenticated":
		return true
	}
	return false
}

func errorMessage(res gjson.Result) string {
	if m := res.Get("errors.0.message"); m.Exists() {
		return m.String()
	}
	if m := res.Get("message"); m.Exists() {
		return m.String()
	}
	return "error payload"
}
