// Package router is the page state machine of the console.
//
// Exactly one page is active at any time. Every activation carries a
// Token whose context is cancelled as soon as another activation
// replaces it, so work started for a page can tell when its result is
// no longer wanted.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Page string

const (
	Login     Page = "login"
	Dashboard Page = "dashboard"
	Upload    Page = "upload"
	Reports   Page = "reports"
	Result    Page = "result"
	Admin     Page = "admin"
)

var pages = []Page{Login, Dashboard, Upload, Reports, Result, Admin}

// Pages lists every page in menu order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

func ParsePage(s string) (Page, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// InitialPage picks the start page from whether a credential is stored.
// The credential is not verified; the first authenticated call may still
// be rejected.
func InitialPage(loggedIn bool) Page {
	if loggedIn {
		return Dashboard
	}
	return Login
}

// Token identifies one activation of a page.
type Token struct {
	Page Page
	ID   string

	ctx context.Context
}

// Context is cancelled when the activation is replaced.
func (t Token) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

type Router struct {
	mu sync.Mutex

	base    context.Context
	current Token
	cancel  context.CancelFunc

	history []Page
}

func New(base context.Context, initial Page) *Router {
	r := &Router{base: base}
	r.activate(initial)
	return r
}

func (r *Router) activate(p Page) Token {
	if r.cancel != nil {
		r.cancel()
	}

	ctx, cancel := context.WithCancel(r.base)
	r.cancel = cancel
	r.current = Token{Page: p, ID: uuid.NewString(), ctx: ctx}
	r.history = append(r.history, p)

	log.Debug().Str("page", string(p)).Str("activation", r.current.ID).Msg("page activated")
	return r.current
}

// Activate deactivates every page and makes p the active one.
func (r *Router) Activate(p Page) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.activate(p)
}

// Transition activates to only if from is still the live activation.
func (r *Router) Transition(from Token, to Page) (Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if from.ID != r.current.ID {
		r.dropped(from)
		return Token{}, false
	}
	return r.activate(to), true
}

func (r *Router) Active() Page {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current.Page
}

func (r *Router) Current() Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

func (r *Router) IsCurrent(t Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return t.ID == r.current.ID
}

// Commit runs fn only while t is the live activation and returns whether
// it ran. No activation can happen while fn runs, so fn must not call
// back into the router.
func (r *Router) Commit(t Token, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID != r.current.ID {
		r.dropped(t)
		return false
	}

	fn()
	return true
}

// Marks reports the active marker of every page.
func (r *Router) Marks() map[Page]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	marks := make(map[Page]bool, len(pages))
	for _, p := range pages {
		marks[p] = p == r.current.Page
	}
	return marks
}

// History is the sequence of activated pages, oldest first.
func (r *Router) History() []Page {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Page, len(r.history))
	copy(out, r.history)
	return out
}

// Close cancels the live activation.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Router) dropped(t Token) {
	log.Debug().
		Str("page", string(t.Page)).
		Str("activation", t.ID).
		Str("active", string(r.current.Page)).
		Msg("dropping stale result")
}
