package apiclient

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Scan uploads a file for scanning and returns the new report id.
func (c *Client) Scan(ctx context.Context, filename string, r io.Reader) (ID, error) {
	const op = "scan"

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err = io.Copy(part, r); err != nil {
		return "", &PreconditionError{Op: op, Message: "Cannot read " + filename}
	}
	if err = mw.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("scan"), buf)
	if err != nil {
		return "", &UnreachableError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(op, req, true)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(body, "report_id")
	if !id.Exists() || id.String() == "" {
		return "", &RejectedError{Op: op, Status: http.StatusOK, Detail: detailOf(body)}
	}

	return ID(id.String()), nil
}

// List returns the report summaries in backend order.
func (c *Client) List(ctx context.Context) ([]Summary, error) {
	var reports []Summary
	if err := c.getJSON(ctx, "list reports", c.endpoint("reports"), true, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Get fetches one report with its findings. Nothing is cached.
func (c *Client) Get(ctx context.Context, id ID) (*Detail, error) {
	r := &Detail{}
	if err := c.getJSON(ctx, "get report", c.endpoint("reports", id.String()), true, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) Delete(ctx context.Context, id ID) error {
	const op = "delete report"

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("reports", id.String()), nil)
	if err != nil {
		return &UnreachableError{Op: op, Err: err}
	}

	_, err = c.do(op, req, true)
	return err
}

// ExportURL is the direct download link of a report. It is handed to
// the user, not fetched.
func (c *Client) ExportURL(id ID) string {
	return c.endpoint("export", id.String())
}

// Export downloads the report export into w and returns the file name
// the backend suggested, if any.
func (c *Client) Export(ctx context.Context, id ID, w io.Writer) (string, error) {
	const op = "export report"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(id), nil)
	if err != nil {
		return "", &UnreachableError{Op: op, Err: err}
	}

	res, err := c.send(op, req, true)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if _, err = io.Copy(w, res.Body); err != nil {
		return "", &UnreachableError{Op: op, Err: err}
	}

	filename := ""
	if cd := res.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	return filename, nil
}
