package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/kaiten-webhooks/internal/event"
	"github.com/garyjia/kaiten-webhooks/internal/metrics"
)

// Dispatcher runs all handlers matching an event: kind-specific handlers
// first, then global handlers, each sequence in registration order. Handler
// failures are logged and absorbed; they never propagate to the caller and
// never prevent subsequent handlers from running.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher backed by the given registry
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch runs every matching handler for the event, one at a time.
// It never returns an error: failures are fully absorbed here.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *event.Event) {
	start := time.Now()

	d.logger.Info("Processing event",
		zap.String("event_kind", ev.Kind),
		zap.String("delivery_id", ev.DeliveryID),
		zap.String("author", ev.AuthorName()))

	for _, h := range d.registry.HandlersFor(ev.Kind) {
		d.invoke(ctx, h, ev)
	}
	for _, h := range d.registry.GlobalHandlers() {
		d.invoke(ctx, h, ev)
	}

	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
}

// Go schedules a fire-and-forget dispatch on its own goroutine. Once
// scheduled the dispatch runs to completion; there is no cancellation, so
// the background context is used rather than the request context.
func (d *Dispatcher) Go(ev *event.Event) {
	d.wg.Add(1)
	metrics.DispatchesInFlight.Inc()

	go func() {
		defer d.wg.Done()
		defer metrics.DispatchesInFlight.Dec()
		d.Dispatch(context.Background(), ev)
	}()
}

// Drain blocks until all in-flight dispatches finish or ctx expires.
// Used during graceful shutdown; the HTTP path never waits on it.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch drain interrupted: %w", ctx.Err())
	}
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, ev *event.Event) {
	err := safeInvoke(ctx, h, ev)
	if err != nil {
		metrics.HandlerInvocations.WithLabelValues(h.Name(), "error").Inc()
		d.logger.Error("Handler failed",
			zap.String("handler", h.Name()),
			zap.String("event_kind", ev.Kind),
			zap.String("delivery_id", ev.DeliveryID),
			zap.Error(err))
		return
	}
	metrics.HandlerInvocations.WithLabelValues(h.Name(), "ok").Inc()
}

// safeInvoke converts a handler panic into an error so one misbehaving
// handler cannot take down the dispatch goroutine.
func safeInvoke(ctx context.Context, h Handler, ev *event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}
