// Package session hands every browser profile an opaque cart token. The
// token isolates carts from each other; it is not authentication.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CookieName is the fixed key the token lives under in the browser.
const CookieName = "gpower_session_id"

// Store is one storage context for the token. Get returns "" when nothing
// has been stored yet.
type Store interface {
	Get() (string, error)
	Set(token string) error
}

// Provider serialises get-or-create on a single store so concurrent callers
// observe the same token.
type Provider struct {
	mu    sync.Mutex
	store Store
	log   logrus.FieldLogger
}

func NewProvider(store Store, log logrus.FieldLogger) *Provider {
	return &Provider{store: store, log: log}
}

// SessionID returns the stored token, creating and storing one first if
// needed. A failing store still yields a token for this call only.
func (p *Provider) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, err := p.store.Get()
	if err != nil {
		p.log.WithError(err).Warn("session store unreadable, issuing ephemeral token")
		return uuid.NewString()
	}
	if Valid(current) {
		return current
	}

	token := uuid.NewString()
	if err := p.store.Set(token); err != nil {
		p.log.WithError(err).Warn("session store unwritable, token will not persist")
	}
	return token
}

// Valid reports whether s looks like a token this package issued.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

var ErrStoreClosed = errors.New("session store closed")

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	token  string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrStoreClosed
	}
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.token = token
	return nil
}

// Close makes every later Get and Set fail.
func (m *MemoryStore) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
