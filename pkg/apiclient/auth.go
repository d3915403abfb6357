package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Login posts form-encoded credentials and returns the access token.
// It never sends a bearer header.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "login"

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("login"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", &UnreachableError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(op, req, false)
	if err != nil {
		return "", err
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", &RejectedError{Op: op, Status: http.StatusOK, Detail: detailOf(body)}
	}

	return token, nil
}

// Health queries the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	h := &Health{}
	if err := c.getJSON(ctx, "health", c.HealthURL, false, h); err != nil {
		return nil, err
	}
	return h, nil
}
