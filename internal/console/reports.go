package console

import (
	"context"
	"fmt"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/render"
	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const (
	msgUnableToLoad   = "Unable to load"
	msgUnableToReport = "Unable to load report"
	msgDeleteFailed   = "Delete failed"
	msgDeleted        = "Deleted"
	statusDown        = "down"
	msgUnexpected     = "unexpected answer"
)

func (c *Console) loadDashboard(tok router.Token) {
	c.spawn(tok, func(ctx context.Context) {
		h, err := c.Backend.Health(ctx)
		if err != nil {
			status := fmt.Sprintf("%s (%s)", config.Red(statusDown), apiclient.UserMessage(err, msgUnexpected))
			if !c.apply(tok, err, func() { c.Screen.Set(APIStatus, status) }) {
				return
			}

			// a server that answers can still list reports
			if apiclient.IsRejected(err) {
				c.loadList(tok, render.PreviewLimit, RecentList)
			}
			return
		}

		status := h.Status
		if old, verr := h.Outdated(c.MinServerVersion); verr != nil {
			status += " " + config.Yellow(fmt.Sprintf("(cannot compare server version: %v)", verr))
		} else if old {
			status += " " + config.Yellow(fmt.Sprintf("(server %s is older than required %s)", h.Version, c.MinServerVersion))
		}

		if !c.apply(tok, nil, func() { c.Screen.Set(APIStatus, status) }) {
			return
		}

		c.loadList(tok, render.PreviewLimit, RecentList)
	})
}

func (c *Console) loadReports(tok router.Token) {
	c.spawn(tok, func(ctx context.Context) {
		c.fetchList(ctx, tok, 0, ReportsList)
	})
}

// loadAdmin shows the full report list on the admin page. It is the same
// fragment as the reports page, written to both regions.
func (c *Console) loadAdmin(tok router.Token) {
	c.spawn(tok, func(ctx context.Context) {
		c.fetchList(ctx, tok, 0, ReportsList, AdminList)
	})
}

func (c *Console) loadList(tok router.Token, limit int, regions ...Region) {
	c.spawn(tok, func(ctx context.Context) {
		c.fetchList(ctx, tok, limit, regions...)
	})
}

func (c *Console) fetchList(ctx context.Context, tok router.Token, limit int, regions ...Region) {
	reports, err := c.Backend.List(ctx)

	text := ""
	if err != nil {
		text = apiclient.UserMessage(err, msgUnableToLoad)
	} else {
		text = render.SummaryList(reports, limit, c.Backend.ExportURL).String()
	}

	c.apply(tok, err, func() {
		for _, r := range regions {
			c.Screen.Set(r, text)
		}
	})
}

// ViewReport shows the result page for report id.
func (c *Console) ViewReport(id apiclient.ID) {
	c.loadReport(c.Router.Activate(router.Result), id)
}

// loadReport fetches report id into the result regions. The report is
// fetched again on every view.
func (c *Console) loadReport(tok router.Token, id apiclient.ID) {
	c.spawn(tok, func(ctx context.Context) {
		r, err := c.Backend.Get(ctx, id)
		if err != nil {
			c.apply(tok, err, func() {
				c.Screen.Set(ResultTitle, config.Bold("Report #"+id.String()))
				c.Screen.Set(Vulnerabilities, apiclient.UserMessage(err, msgUnableToReport))
				c.Screen.Set(RawOutput, "")
			})
			return
		}

		d := render.ReportDetail(r)
		c.apply(tok, nil, func() {
			c.Screen.Set(ResultTitle, config.Bold(d.Title))
			c.Screen.Set(Vulnerabilities, d.Findings())
			c.Screen.Set(RawOutput, d.Raw)
		})
	})
}

// DeleteReport deletes report id. The listing of the current page is
// fetched again only when the backend accepted the delete.
func (c *Console) DeleteReport(id apiclient.ID) {
	tok := c.Router.Current()

	c.spawn(tok, func(ctx context.Context) {
		err := c.Backend.Delete(ctx, id)
		if err != nil {
			c.apply(tok, err, func() {
				c.Screen.Set(ReportsMsg, apiclient.UserMessage(err, msgDeleteFailed))
			})
			return
		}

		if !c.apply(tok, nil, func() {
			c.Screen.Set(ReportsMsg, config.Pink(fmt.Sprintf("%s report #%s", msgDeleted, id)))
		}) {
			return
		}

		c.load(tok)
	})
}

// ExportURL is the download link of report id.
func (c *Console) ExportURL(id apiclient.ID) string {
	return c.Backend.ExportURL(id)
}
