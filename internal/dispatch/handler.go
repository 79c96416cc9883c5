package dispatch

import (
	"context"

	"github.com/garyjia/kaiten-webhooks/internal/event"
)

// Handler is a unit of application logic invoked once per matching event.
// Handle is called on the dispatch goroutine; it must return only when the
// handler's work is finished so that registration order is preserved.
type Handler interface {
	Name() string
	Handle(ctx context.Context, ev *event.Event) error
}

type funcHandler struct {
	name string
	fn   func(ctx context.Context, ev *event.Event) error
}

func (h *funcHandler) Name() string { return h.name }

func (h *funcHandler) Handle(ctx context.Context, ev *event.Event) error {
	return h.fn(ctx, ev)
}

// Func wraps a synchronous function as a named Handler.
func Func(name string, fn func(ctx context.Context, ev *event.Event) error) Handler {
	return &funcHandler{name: name, fn: fn}
}

type deferredHandler struct {
	name string
	fn   func(ctx context.Context, ev *event.Event) <-chan error
}

func (h *deferredHandler) Name() string { return h.name }

func (h *deferredHandler) Handle(ctx context.Context, ev *event.Event) error {
	return <-h.fn(ctx, ev)
}

// Deferred wraps a function that starts its work and reports completion on
// the returned channel. The dispatcher waits for the result before moving on
// to the next handler, so deferred handlers still run in registration order.
func Deferred(name string, fn func(ctx context.Context, ev *event.Event) <-chan error) Handler {
	return &deferredHandler{name: name, fn: fn}
}
