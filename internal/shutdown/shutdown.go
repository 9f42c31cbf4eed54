package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Manager runs registered shutdown hooks once, newest first, within a timeout.
type Manager struct {
	mu      sync.Mutex
	hooks   []hook
	timeout time.Duration
	log     logrus.FieldLogger
	once    sync.Once
	err     error
}

// New creates a shutdown manager.
func New(timeout time.Duration, log logrus.FieldLogger) *Manager {
	return &Manager{
		timeout: timeout,
		log:     log,
	}
}

// Register adds a shutdown hook. Hooks run in reverse registration order.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Shutdown runs every hook and returns their joined errors. Later calls
// return the first result without running anything.
func (m *Manager) Shutdown() error {
	m.once.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		var errs []error
		for i := len(m.hooks) - 1; i >= 0; i-- {
			h := m.hooks[i]
			m.log.WithField("hook", h.name).Debug("Running shutdown hook")
			if err := h.fn(ctx); err != nil {
				m.log.WithError(err).WithField("hook", h.name).Warn("Shutdown hook failed")
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			}
		}
		m.err = errors.Join(errs...)
	})
	return m.err
}

// StopHTTPServer creates a hook that gracefully shuts server down.
func StopHTTPServer(server interface{ Shutdown(context.Context) error }) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop http server: %w", err)
		}
		return nil
	}
}
