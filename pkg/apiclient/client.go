// Package apiclient talks to the scan backend REST API.
//
// Every call classifies its outcome as success, *RejectedError (non-2xx) or
// *UnreachableError (no response). Callers must handle the two failure
// kinds separately since they call for different remedies.
package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"k8s.io/apimachinery/pkg/util/json"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/pkg/session"
)

var UserAgent = "scanconsole/dev"

type Client struct {
	Cli   *http.Client
	Store session.Store

	BaseURL   string
	HealthURL string
}

func New(s *config.Settings, store session.Store) *Client {
	tr := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		IdleConnTimeout: 60 * time.Second,
	}

	return &Client{
		Cli: &http.Client{
			Transport: tr,
			Timeout:   s.Timeout,
		},
		Store:     store,
		BaseURL:   strings.TrimRight(s.API, "/"),
		HealthURL: s.HealthURL(),
	}
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, c.BaseURL)
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return strings.Join(escaped, "/")
}

// authorize attaches the bearer credential as it is stored right now.
func (c *Client) authorize(req *http.Request) {
	if c.Store == nil {
		return
	}
	if token, ok := c.Store.Credential(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send performs req and returns the raw response for a 2xx status.
// The caller owns the response body.
func (c *Client) send(op string, req *http.Request, auth bool) (*http.Response, error) {
	if auth {
		c.authorize(req)
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	res, err := c.Cli.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("op", op).Str("url", req.URL.String()).Msg("request failed")
		return nil, &UnreachableError{Op: op, Err: err}
	}

	log.Debug().
		Str("op", op).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request done")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()

		body, _ := io.ReadAll(res.Body)
		return nil, &RejectedError{Op: op, Status: res.StatusCode, Detail: detailOf(body)}
	}

	return res, nil
}

// do performs req and reads the whole success body.
func (c *Client) do(op string, req *http.Request, auth bool) ([]byte, error) {
	res, err := c.send(op, req, auth)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UnreachableError{Op: op, Err: err}
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, op, target string, auth bool, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &UnreachableError{Op: op, Err: err}
	}

	body, err := c.do(op, req, auth)
	if err != nil {
		return err
	}

	return decode(op, body, v)
}

func decode(op string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &RejectedError{Op: op, Status: http.StatusOK, Err: err}
	}
	return nil
}

// detailOf pulls the backend error message out of an error body. FastAPI
// sends either a plain string or a list of validation errors.
func detailOf(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		return detail.Get("0.msg").String()
	}

	return ""
}
