package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const (
	NoReports = "No reports"

	// PreviewLimit is how many reports the dashboard shows.
	PreviewLimit = 3
)

// Row is one report of a rendered list.
type Row struct {
	ID      apiclient.ID
	Cells   []string
	Actions []string
}

// List is a rendered report listing. Either Rows or Placeholder is set.
type List struct {
	Full        bool
	Rows        []Row
	Placeholder string
}

// SummaryList renders reports in backend order. A positive limit keeps
// only the first limit reports as a short preview; otherwise the full
// listing with uploader and export/delete actions is produced.
func SummaryList(reports []apiclient.Summary, limit int, exportURL func(apiclient.ID) string) *List {
	if len(reports) == 0 {
		return &List{Full: limit <= 0, Placeholder: NoReports}
	}

	if limit > 0 {
		if len(reports) > limit {
			reports = reports[:limit]
		}

		l := &List{Rows: make([]Row, 0, len(reports))}
		for _, r := range reports {
			l.Rows = append(l.Rows, Row{
				ID:      r.ID,
				Cells:   []string{r.ID.String(), r.Filename, r.Timestamp},
				Actions: []string{"view " + r.ID.String()},
			})
		}
		return l
	}

	l := &List{Full: true, Rows: make([]Row, 0, len(reports))}
	for _, r := range reports {
		actions := []string{"view " + r.ID.String()}
		if exportURL != nil {
			actions = append(actions, "export "+exportURL(r.ID))
		}
		actions = append(actions, "delete "+r.ID.String())

		l.Rows = append(l.Rows, Row{
			ID:      r.ID,
			Cells:   []string{"#" + r.ID.String(), r.Filename, r.Uploader, r.Timestamp},
			Actions: actions,
		})
	}
	return l
}

func (l *List) Render(w io.Writer) {
	if len(l.Rows) == 0 {
		fmt.Fprintln(w, config.Muted(l.Placeholder))
		return
	}

	table := tablewriter.NewWriter(w)
	if l.Full {
		table.SetHeader([]string{"ID", "File", "Uploader", "Time", "Actions"})
	} else {
		table.SetHeader([]string{"ID", "File", "Time", "Actions"})
	}
	table.SetAutoWrapText(false)
	table.SetRowLine(true)

	for _, r := range l.Rows {
		row := append([]string{}, r.Cells...)
		row = append(row, strings.Join(r.Actions, " | "))
		table.Append(row)
	}

	table.Render()
}

func (l *List) String() string {
	b := &strings.Builder{}
	l.Render(b)
	return b.String()
}
