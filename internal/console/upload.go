package console

import (
	"context"
	"os"

	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const (
	msgChooseFile = "Choose a file first"
	msgScanFailed = "Scan failed"
)

// SubmitUpload sends the file at path for scanning. Without a file it
// fails at once and makes no request. On success the result page is
// shown and the new report is loaded into it.
func (c *Console) SubmitUpload(path string) {
	tok := c.Router.Current()

	if path == "" {
		c.reject(tok, UploadMsg, &apiclient.PreconditionError{Op: "scan", Message: msgChooseFile})
		return
	}

	f, err := os.Open(path)
	if err != nil {
		c.reject(tok, UploadMsg, &apiclient.PreconditionError{Op: "scan", Message: "Cannot open " + path})
		return
	}

	c.Screen.Set(UploadMsg, "Uploading "+path+" ...")

	c.spawn(tok, func(ctx context.Context) {
		defer f.Close()

		id, err := c.Backend.Scan(ctx, path, f)
		if err != nil {
			c.apply(tok, err, func() {
				c.Screen.Set(UploadMsg, apiclient.UserMessage(err, msgScanFailed))
			})
			return
		}

		if !c.apply(tok, nil, func() { c.Screen.Set(UploadMsg, "") }) {
			return
		}

		next, ok := c.Router.Transition(tok, router.Result)
		if !ok {
			return
		}
		c.notify(next.Page)
		c.loadReport(next, id)
	})
}

// reject shows a local failure without touching the network.
func (c *Console) reject(tok router.Token, r Region, err *apiclient.PreconditionError) {
	c.apply(tok, err, func() {
		c.Screen.Set(r, err.Message)
	})
}
