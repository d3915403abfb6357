package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/router"
)

// Region is a named display slot of a page.
type Region string

const (
	LoginMsg        Region = "login-msg"
	APIStatus       Region = "api-status"
	RecentList      Region = "recent-list"
	UploadMsg       Region = "upload-msg"
	ReportsMsg      Region = "reports-msg"
	ReportsList     Region = "reports-list"
	ResultTitle     Region = "result-title"
	Vulnerabilities Region = "vulnerabilities"
	RawOutput       Region = "raw-output"
	AdminList       Region = "admin-list"
)

// layout is the order regions are printed in for each page.
var layout = map[router.Page][]Region{
	router.Login:     {LoginMsg},
	router.Dashboard: {APIStatus, RecentList},
	router.Upload:    {UploadMsg},
	router.Reports:   {ReportsMsg, ReportsList},
	router.Result:    {ResultTitle, Vulnerabilities, RawOutput},
	router.Admin:     {ReportsMsg, AdminList},
}

var titles = map[router.Page]string{
	router.Login:     "Login",
	router.Dashboard: "Dashboard",
	router.Upload:    "Upload",
	router.Reports:   "Reports",
	router.Result:    "Scan result",
	router.Admin:     "Admin",
}

// Screen holds the text of every region.
type Screen struct {
	mu      sync.RWMutex
	regions map[Region]string
}

func NewScreen() *Screen {
	return &Screen{regions: map[Region]string{}}
}

func (s *Screen) Set(r Region, text string) {
	s.mu.Lock()
	s.regions[r] = text
	s.mu.Unlock()
}

func (s *Screen) Get(r Region) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.regions[r]
}

// Print writes the regions of page p to w.
func (s *Screen) Print(w io.Writer, p router.Page) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fmt.Fprintf(w, "\n%s\n", config.Bold("== "+titles[p]+" =="))

	for _, r := range layout[p] {
		text := strings.TrimRight(s.regions[r], "\n")
		if text == "" {
			continue
		}

		switch r {
		case APIStatus:
			fmt.Fprintf(w, "API status: %s\n", text)
		case LoginMsg, UploadMsg, ReportsMsg:
			fmt.Fprintln(w, config.Yellow(text))
		case RawOutput:
			fmt.Fprintf(w, "\nRaw output:\n%s\n", text)
		default:
			fmt.Fprintln(w, text)
		}
	}
}
