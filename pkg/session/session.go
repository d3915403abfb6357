// Package session keeps the bearer credential between runs.
//
// Only this package reads or writes the credential storage; every other
// component goes through a Store.
package session

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrEmptyCredential = errors.New("empty credential")

// Store holds at most one bearer credential.
// An absent credential means the client is not logged in.
type Store interface {
	Credential() (string, bool)
	SetCredential(token string) error
	ClearCredential() error
}

// Memory is a Store that lives for the process only.
type Memory struct {
	mu    sync.RWMutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, m.token != ""
}

func (m *Memory) SetCredential(token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) ClearCredential() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
