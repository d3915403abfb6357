// Package console drives the scan client: it reacts to user events,
// calls the backend, renders the answers into screen regions and moves
// the router between pages.
//
// Every backend call runs on its own goroutine, bound to the activation
// of the page that started it. A result is written to the screen only if
// that activation is still live; otherwise it is dropped.
package console

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
	"github.com/kvesta/scanconsole/pkg/session"
)

// Backend is the part of the REST API the console consumes.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Health(ctx context.Context) (*apiclient.Health, error)
	Scan(ctx context.Context, filename string, r io.Reader) (apiclient.ID, error)
	List(ctx context.Context) ([]apiclient.Summary, error)
	Get(ctx context.Context, id apiclient.ID) (*apiclient.Detail, error)
	Delete(ctx context.Context, id apiclient.ID) error
	ExportURL(id apiclient.ID) string
}

type Console struct {
	Router  *router.Router
	Screen  *Screen
	Backend Backend
	Store   session.Store

	// MinServerVersion, when set, flags older servers on the dashboard.
	MinServerVersion string

	// OnUpdate is called after a result lands on the screen.
	OnUpdate func(p router.Page)

	wg sync.WaitGroup

	mu      sync.Mutex
	lastErr error
}

// New builds a console whose first page depends on whether a credential
// is stored.
func New(ctx context.Context, backend Backend, store session.Store) *Console {
	_, loggedIn := store.Credential()

	return &Console{
		Router:  router.New(ctx, router.InitialPage(loggedIn)),
		Screen:  NewScreen(),
		Backend: backend,
		Store:   store,
	}
}

// Start loads the initial page.
func (c *Console) Start() {
	c.load(c.Router.Current())
}

// Navigate switches to page p and refreshes it. Messages left on the
// page by an earlier visit are cleared.
func (c *Console) Navigate(p router.Page) {
	for _, r := range layout[p] {
		switch r {
		case LoginMsg, UploadMsg, ReportsMsg:
			c.Screen.Set(r, "")
		}
	}

	c.load(c.Router.Activate(p))
}

// load refreshes the data of the page tok belongs to.
func (c *Console) load(tok router.Token) {
	switch tok.Page {
	case router.Dashboard:
		c.loadDashboard(tok)
	case router.Reports:
		c.loadReports(tok)
	case router.Admin:
		c.loadAdmin(tok)
	}
}

// Wait blocks until every operation started so far has settled.
func (c *Console) Wait() {
	c.wg.Wait()
}

// Active is the page currently shown.
func (c *Console) Active() router.Page {
	return c.Router.Active()
}

// Render prints the active page in a single write.
func (c *Console) Render(w io.Writer) {
	buf := &bytes.Buffer{}
	c.Screen.Print(buf, c.Router.Active())
	_, _ = w.Write(buf.Bytes())
}

// Err returns the failure of the last operation that reached the screen,
// or nil if it succeeded.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

func (c *Console) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// spawn runs fn on its own goroutine with the context of tok.
func (c *Console) spawn(tok router.Token, fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(tok.Context())
	}()
}

// apply writes a result for tok and records its outcome. Stale results
// are dropped.
func (c *Console) apply(tok router.Token, err error, fn func()) bool {
	if !c.Router.Commit(tok, fn) {
		return false
	}

	c.setErr(err)
	c.notify(tok.Page)
	return true
}

func (c *Console) notify(p router.Page) {
	if c.OnUpdate != nil {
		c.OnUpdate(p)
	}
}
