package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const NoVulnerabilities = "No vulnerabilities found."

// Entry is one rendered finding.
type Entry struct {
	Class    Class
	Severity string
	TestName string
	Line     int
	Issue    string
}

func (e Entry) Text() string {
	return fmt.Sprintf("%s — Line %d — %s", e.TestName, e.Line, e.Issue)
}

// Detail is a rendered report. Either Entries or Placeholder is set.
type Detail struct {
	Title       string
	Entries     []Entry
	Placeholder string
	Raw         string
}

func Title(id apiclient.ID, filename string) string {
	return fmt.Sprintf("Report #%s — %s", id, filename)
}

func ReportDetail(r *apiclient.Detail) *Detail {
	d := &Detail{
		Title: Title(r.ID, r.Filename),
		Raw:   RawOutput(r.RawOutput),
	}

	if len(r.Vulnerabilities) == 0 {
		d.Placeholder = NoVulnerabilities
		return d
	}

	d.Entries = make([]Entry, 0, len(r.Vulnerabilities))
	for _, v := range r.Vulnerabilities {
		d.Entries = append(d.Entries, Entry{
			Class:    SeverityClass(v.Severity),
			Severity: SeverityLabel(v.Severity),
			TestName: v.TestName,
			Line:     v.Line,
			Issue:    v.Issue,
		})
	}
	return d
}

// RawOutput joins the scanner output lines; nil gives an empty string.
func RawOutput(lines []string) string {
	return strings.Join(lines, "\n")
}

// Counts tallies entries per class.
func (d *Detail) Counts() map[Class]int {
	counts := map[Class]int{}
	for _, e := range d.Entries {
		counts[e.Class] += 1
	}
	return counts
}

// RenderFindings writes the findings block only.
func (d *Detail) RenderFindings(w io.Writer) {
	if len(d.Entries) == 0 {
		fmt.Fprintln(w, config.Muted(d.Placeholder))
		return
	}

	counts := d.Counts()
	fmt.Fprintf(w, "Detected %s vulnerabilities | High: %s Medium: %s Low: %s\n\n",
		config.Yellow(len(d.Entries)),
		config.Red(counts[ClassHigh]),
		config.Yellow(counts[ClassMedium]),
		config.Green(counts[ClassLow]))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Severity", "Test", "Line", "Issue"})
	table.SetRowLine(true)

	for i, e := range d.Entries {
		table.Append([]string{
			strconv.Itoa(i + 1),
			judgeSeverity(e.Class, e.Severity),
			e.TestName,
			"Line " + strconv.Itoa(e.Line),
			e.Issue,
		})
	}

	table.Render()
}

func (d *Detail) Render(w io.Writer) {
	fmt.Fprintln(w, config.Bold(d.Title))
	fmt.Fprintln(w)
	d.RenderFindings(w)

	if d.Raw != "" {
		fmt.Fprintf(w, "\nRaw output:\n%s\n", d.Raw)
	}
}

func (d *Detail) Findings() string {
	b := &strings.Builder{}
	d.RenderFindings(b)
	return b.String()
}

func (d *Detail) String() string {
	b := &strings.Builder{}
	d.Render(b)
	return b.String()
}
