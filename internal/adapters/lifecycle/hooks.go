// Package lifecycle runs registered cleanup hooks on the single termination path.
package lifecycle

import (
	"fmt"
	"sync"

	"go.trai.ch/phi/internal/core/ports"
)

var _ ports.Lifecycle = (*Hooks)(nil)

type hook struct {
	name string
	fn   func() error
}

// Hooks is an ordered list of shutdown hooks.
type Hooks struct {
	mu       sync.Mutex
	hooks    []hook
	shutdown bool
	once     sync.Once
	done     chan struct{}
	log      ports.Logger
}

// New creates an empty hook list.
func New(log ports.Logger) *Hooks {
	return &Hooks{log: log, done: make(chan struct{})}
}

// Register adds a named hook. Registrations after Shutdown are ignored.
func (h *Hooks) Register(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		h.log.Debug(fmt.Sprintf("ignoring hook %q registered after shutdown", name))
		return
	}
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Done is closed once every hook has run.
func (h *Hooks) Done() <-chan struct{} {
	return h.done
}

// Shutdown runs every hook exactly once, newest first. Hook errors and panics
// are logged at debug level and never stop the remaining hooks.
func (h *Hooks) Shutdown() {
	h.once.Do(func() {
		h.mu.Lock()
		h.shutdown = true
		hooks := h.hooks
		h.hooks = nil
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			h.run(hooks[i])
		}
		close(h.done)
	})
}

func (h *Hooks) run(hk hook) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Debug(fmt.Sprintf("shutdown hook %q panicked: %v", hk.name, r))
		}
	}()

	if err := hk.fn(); err != nil {
		h.log.Debug(fmt.Sprintf("shutdown hook %q failed: %v", hk.name, err))
	}
}
