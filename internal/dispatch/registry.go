package dispatch

import (
	"sync"

	"go.uber.org/zap"
)

// Registry stores handlers keyed by event kind plus a list of global
// handlers. Entries are only ever appended, never removed or reordered.
type Registry struct {
	mu     sync.RWMutex
	keyed  map[string][]Handler
	global []Handler
	logger *zap.Logger
}

// NewRegistry creates an empty handler registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		keyed:  make(map[string][]Handler),
		logger: logger,
	}
}

// Register appends a handler to the sequence for the given event kind.
// The empty kind is an ordinary key; registration never fails.
func (r *Registry) Register(kind string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keyed[kind] = append(r.keyed[kind], h)
	r.logger.Info("Handler registered",
		zap.String("event_kind", kind),
		zap.String("handler", h.Name()))
}

// RegisterGlobal appends a handler invoked for every event regardless of kind
func (r *Registry) RegisterGlobal(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.global = append(r.global, h)
	r.logger.Info("Global handler registered", zap.String("handler", h.Name()))
}

// HandlersFor returns the handlers registered for kind in registration order.
// The returned slice is a snapshot; registration concurrent with a running
// dispatch never mutates a slice a dispatch is iterating.
func (r *Registry) HandlersFor(kind string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Handler(nil), r.keyed[kind]...)
}

// GlobalHandlers returns the global handlers in registration order
func (r *Registry) GlobalHandlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Handler(nil), r.global...)
}
