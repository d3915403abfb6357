package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kvesta/scanconsole/config"
	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
	"github.com/kvesta/scanconsole/pkg/session"
)

func init() {
	config.DisableColor()
}

const reportSeven = `{"id":7,"filename":"x.py","uploader":"admin","timestamp":"t7",
	"vulnerabilities":[{"test_name":"T1","line":12,"issue":"eval use","severity":"high"}],
	"raw_output":["line1","line2"]}`

// fakeAPI is a minimal scan backend.
type fakeAPI struct {
	mu      sync.Mutex
	reports []apiclient.Summary
	calls   map[string]int

	deleteStatus int
	scanStatus   int
	healthStatus int

	// block holds /reports listings until closed.
	block chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		reports: []apiclient.Summary{
			{ID: "1", Filename: "a.py", Uploader: "alice", Timestamp: "t1"},
			{ID: "2", Filename: "b.py", Uploader: "bob", Timestamp: "t2"},
		},
		calls: map[string]int{},
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[key]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls[key] += 1
	block := f.block
	f.mu.Unlock()

	switch {
	case key == "GET /health":
		if f.healthStatus != 0 {
			writeJSON(w, f.healthStatus, `{"detail":"maintenance"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"status":"ok","version":"1.0.0"}`)
		return

	case key == "POST /api/login":
		_ = r.ParseForm()
		if r.PostForm.Get("username") == "admin" && r.PostForm.Get("password") == "admin123" {
			writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer"}`)
			return
		}
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
		return
	}

	if r.Header.Get("Authorization") != "Bearer tok" {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
		return
	}

	switch {
	case key == "GET /api/reports":
		if block != nil {
			select {
			case <-block:
			case <-r.Context().Done():
				return
			}
		}

		f.mu.Lock()
		data, _ := json.Marshal(f.reports)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, string(data))

	case key == "GET /api/reports/7":
		writeJSON(w, http.StatusOK, reportSeven)

	case key == "POST /api/scan":
		if f.scanStatus != 0 {
			writeJSON(w, f.scanStatus, `{"detail":"Unsupported file type"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"report_id":7}`)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/reports/"):
		if f.deleteStatus != 0 {
			writeJSON(w, f.deleteStatus, `{}`)
			return
		}

		id := apiclient.ID(strings.TrimPrefix(r.URL.Path, "/api/reports/"))
		f.mu.Lock()
		kept := f.reports[:0]
		for _, s := range f.reports {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		f.reports = kept
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"ok":true}`)

	default:
		writeJSON(w, http.StatusNotFound, `{"detail":"Report not found"}`)
	}
}

func newTestConsole(t *testing.T, api http.Handler, loggedIn bool) (*Console, session.Store) {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	store := session.NewMemory()
	if loggedIn {
		_ = store.SetCredential("tok")
	}

	client := apiclient.New(&config.Settings{API: server.URL + "/api", Timeout: 5 * time.Second}, store)
	c := New(context.Background(), client, store)
	t.Cleanup(c.Router.Close)
	return c, store
}

func TestStartPage(t *testing.T) {
	tests := []struct {
		name     string
		loggedIn bool
		want     router.Page
	}{
		{name: "anonymous", loggedIn: false, want: router.Login},
		{name: "storedCredential", loggedIn: true, want: router.Dashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConsole(t, newFakeAPI(), tt.loggedIn)
			c.Start()
			c.Wait()

			if got := c.Active(); got != tt.want {
				t.Errorf("Active() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDashboardPreview(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), true)
	c.Start()
	c.Wait()

	if got := c.Screen.Get(APIStatus); got != "ok" {
		t.Errorf("api status got = %q, want ok", got)
	}

	recent := c.Screen.Get(RecentList)
	for _, s := range []string{"a.py", "b.py", "t1", "t2", "view 1", "view 2"} {
		if !strings.Contains(recent, s) {
			t.Errorf("preview missing %q:\n%s", s, recent)
		}
	}
	if strings.Contains(recent, "delete") {
		t.Errorf("preview shows delete actions:\n%s", recent)
	}
}

func TestDashboardOutdatedServer(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), true)
	c.MinServerVersion = "2.0.0"
	c.Start()
	c.Wait()

	status := c.Screen.Get(APIStatus)
	if !strings.HasPrefix(status, "ok") || !strings.Contains(status, "older than required 2.0.0") {
		t.Errorf("api status got = %q", status)
	}
}

func TestDashboardServerDown(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		api := newFakeAPI()
		api.healthStatus = http.StatusServiceUnavailable
		c, _ := newTestConsole(t, api, true)
		c.Start()
		c.Wait()

		if got, want := c.Screen.Get(APIStatus), "down (maintenance)"; got != want {
			t.Errorf("api status got = %q, want %q", got, want)
		}
		if recent := c.Screen.Get(RecentList); !strings.Contains(recent, "a.py") {
			t.Errorf("preview not loaded after rejected health:\n%s", recent)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		base := server.URL
		server.Close()

		store := session.NewMemory()
		_ = store.SetCredential("tok")
		client := apiclient.New(&config.Settings{API: base + "/api", Timeout: time.Second}, store)
		c := New(context.Background(), client, store)
		defer c.Router.Close()

		c.Start()
		c.Wait()

		want := "down (" + apiclient.MsgUnreachable + ")"
		if got := c.Screen.Get(APIStatus); got != want {
			t.Errorf("api status got = %q, want %q", got, want)
		}
		if recent := c.Screen.Get(RecentList); recent != "" {
			t.Errorf("preview loaded against unreachable server:\n%s", recent)
		}
		if !apiclient.IsUnreachable(c.Err()) {
			t.Errorf("Err() got = %v, want unreachable", c.Err())
		}
	})
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantPage   router.Page
		wantStored bool
		wantMsg    string
	}{
		{name: "valid", password: "admin123", wantPage: router.Dashboard, wantStored: true},
		{name: "invalid", password: "nope", wantPage: router.Login, wantMsg: "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := newTestConsole(t, newFakeAPI(), false)
			c.Start()
			c.SubmitLogin("admin", tt.password)
			c.Wait()

			if got := c.Active(); got != tt.wantPage {
				t.Errorf("Active() got = %v, want %v", got, tt.wantPage)
			}

			token, stored := store.Credential()
			if stored != tt.wantStored {
				t.Errorf("credential stored = %v, want %v", stored, tt.wantStored)
			}
			if stored && token == "" {
				t.Errorf("stored an empty credential")
			}

			if got := c.Screen.Get(LoginMsg); got != tt.wantMsg {
				t.Errorf("login message got = %q, want %q", got, tt.wantMsg)
			}

			if tt.wantStored && c.Screen.Get(APIStatus) != "ok" {
				t.Errorf("dashboard not refreshed after login")
			}
		})
	}
}

func TestLoginUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	store := session.NewMemory()
	client := apiclient.New(&config.Settings{API: base + "/api", Timeout: time.Second}, store)
	c := New(context.Background(), client, store)
	defer c.Router.Close()

	c.SubmitLogin("admin", "admin123")
	c.Wait()

	if got := c.Screen.Get(LoginMsg); got != apiclient.MsgUnreachable {
		t.Errorf("login message got = %q, want %q", got, apiclient.MsgUnreachable)
	}
	if c.Active() != router.Login {
		t.Errorf("navigated away on unreachable server")
	}
	if !apiclient.IsUnreachable(c.Err()) {
		t.Errorf("Err() got = %v, want unreachable", c.Err())
	}
}

func TestLogout(t *testing.T) {
	c, store := newTestConsole(t, newFakeAPI(), true)
	c.Start()
	c.Wait()

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := store.Credential(); ok {
		t.Errorf("credential kept after logout")
	}
	if c.Active() != router.Login {
		t.Errorf("Active() got = %v, want login", c.Active())
	}
}

func TestUploadWithoutFile(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Upload)
	c.SubmitUpload("")
	c.Wait()

	if got := c.Screen.Get(UploadMsg); got != msgChooseFile {
		t.Errorf("upload message got = %q, want %q", got, msgChooseFile)
	}
	if n := api.count("POST /api/scan"); n != 0 {
		t.Errorf("scan called %d times", n)
	}
	if !apiclient.IsPrecondition(c.Err()) {
		t.Errorf("Err() got = %v, want precondition", c.Err())
	}
	if c.Active() != router.Upload {
		t.Errorf("Active() got = %v, want upload", c.Active())
	}
}

func writeSource(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "x.py")
	if err := os.WriteFile(path, []byte("eval(input())\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadShowsResult(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Upload)
	c.SubmitUpload(writeSource(t))
	c.Wait()

	if c.Active() != router.Result {
		t.Fatalf("Active() got = %v, want result", c.Active())
	}

	if got := c.Screen.Get(ResultTitle); got != "Report #7 — x.py" {
		t.Errorf("title got = %q", got)
	}

	vulns := c.Screen.Get(Vulnerabilities)
	for _, s := range []string{"HIGH", "T1", "Line 12", "eval use"} {
		if !strings.Contains(vulns, s) {
			t.Errorf("findings missing %q:\n%s", s, vulns)
		}
	}

	if got := c.Screen.Get(RawOutput); got != "line1\nline2" {
		t.Errorf("raw output got = %q", got)
	}
	if n := api.count("GET /api/reports/7"); n != 1 {
		t.Errorf("detail fetched %d times, want 1", n)
	}
}

func TestUploadRejected(t *testing.T) {
	api := newFakeAPI()
	api.scanStatus = http.StatusBadRequest
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Upload)
	c.SubmitUpload(writeSource(t))
	c.Wait()

	if got := c.Screen.Get(UploadMsg); got != "Unsupported file type" {
		t.Errorf("upload message got = %q", got)
	}
	if c.Active() != router.Upload {
		t.Errorf("Active() got = %v, want upload", c.Active())
	}
}

func TestUploadMissingFile(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Upload)
	c.SubmitUpload(filepath.Join(t.TempDir(), "absent.py"))
	c.Wait()

	if got := c.Screen.Get(UploadMsg); !strings.HasPrefix(got, "Cannot open") {
		t.Errorf("upload message got = %q", got)
	}
	if n := api.count("POST /api/scan"); n != 0 {
		t.Errorf("scan called %d times", n)
	}
}

func TestReportsPage(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), true)
	c.Navigate(router.Reports)
	c.Wait()

	list := c.Screen.Get(ReportsList)
	for _, s := range []string{"#1", "a.py", "alice", "#2", "b.py", "bob", "delete 2", "/api/export/1"} {
		if !strings.Contains(list, s) {
			t.Errorf("listing missing %q:\n%s", s, list)
		}
	}
	if strings.Index(list, "a.py") > strings.Index(list, "b.py") {
		t.Errorf("listing not in backend order:\n%s", list)
	}
}

func TestReportsEmpty(t *testing.T) {
	api := newFakeAPI()
	api.reports = nil
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Reports)
	c.Wait()

	if got := c.Screen.Get(ReportsList); !strings.Contains(got, "No reports") {
		t.Errorf("listing got = %q, want placeholder", got)
	}
}

func TestReportsRejected(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), false)
	c.Navigate(router.Reports)
	c.Wait()

	// the fake answers 401 with a detail, which wins over the fallback
	if got := c.Screen.Get(ReportsList); got != "Not authenticated" {
		t.Errorf("listing got = %q", got)
	}
	if c.Active() != router.Reports {
		t.Errorf("Active() got = %v", c.Active())
	}
}

func TestDeleteAccepted(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Reports)
	c.Wait()

	c.DeleteReport("1")
	c.Wait()

	if n := api.count("GET /api/reports"); n != 2 {
		t.Errorf("listing fetched %d times, want 2", n)
	}
	list := c.Screen.Get(ReportsList)
	if strings.Contains(list, "a.py") || !strings.Contains(list, "b.py") {
		t.Errorf("listing after delete:\n%s", list)
	}
	if got := c.Screen.Get(ReportsMsg); !strings.HasPrefix(got, msgDeleted) {
		t.Errorf("message got = %q", got)
	}
}

func TestDeleteRejected(t *testing.T) {
	api := newFakeAPI()
	api.deleteStatus = http.StatusForbidden
	c, _ := newTestConsole(t, api, true)
	c.Navigate(router.Reports)
	c.Wait()
	before := c.Screen.Get(ReportsList)

	c.DeleteReport("1")
	c.Wait()

	if got := c.Screen.Get(ReportsList); got != before {
		t.Errorf("listing changed after rejected delete:\n%s", got)
	}
	if n := api.count("GET /api/reports"); n != 1 {
		t.Errorf("listing fetched %d times, want 1", n)
	}
	if got := c.Screen.Get(ReportsMsg); got != msgDeleteFailed {
		t.Errorf("message got = %q, want %q", got, msgDeleteFailed)
	}
}

func TestAdminMirrorsReports(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), true)
	c.Navigate(router.Admin)
	c.Wait()

	admin := c.Screen.Get(AdminList)
	if admin == "" || admin != c.Screen.Get(ReportsList) {
		t.Errorf("admin list differs from reports list:\n%s", admin)
	}
}

func TestViewReportNotFound(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), true)
	c.ViewReport("99")
	c.Wait()

	if got := c.Screen.Get(Vulnerabilities); got != "Report not found" {
		t.Errorf("findings got = %q", got)
	}
	if c.Active() != router.Result {
		t.Errorf("Active() got = %v", c.Active())
	}
}

func TestLateListingDropped(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	c, _ := newTestConsole(t, api, true)

	c.Navigate(router.Reports)
	// wait until the request is in flight before leaving the page
	for i := 0; i < 200 && api.count("GET /api/reports") == 0; i++ {
		time.Sleep(5 * time.Millisecond)
	}
	c.Navigate(router.Upload)
	close(api.block)
	c.Wait()

	if got := c.Screen.Get(ReportsList); got != "" {
		t.Errorf("late listing written to a hidden page:\n%s", got)
	}
	if c.Active() != router.Upload {
		t.Errorf("Active() got = %v, want upload", c.Active())
	}
}

func TestRun(t *testing.T) {
	c, _ := newTestConsole(t, newFakeAPI(), false)

	script := strings.Join([]string{
		"login admin admin123",
		"reports",
		"view 7",
		"export 7",
		"bogus",
		"quit",
	}, "\n")

	out := &strings.Builder{}
	if err := c.Run(strings.NewReader(script), out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	for _, s := range []string{"== Login ==", "== Reports ==", "/api/export/7", "unknown command or page \"bogus\""} {
		if !strings.Contains(text, s) {
			t.Errorf("output missing %q:\n%s", s, text)
		}
	}
	if c.Active() != router.Result {
		t.Errorf("Active() got = %v, want result", c.Active())
	}
}
