package service

import (
	"context"
	"sync"

	"marketplace-payments/internal/core/domain"
	"marketplace-payments/internal/core/ports"

	"github.com/rs/zerolog"
)

// WebhookEventQueue is a bounded in-process queue between the webhook
// handler and the event processor. The handler enqueues and returns 200
// immediately; a single worker goroutine drains the queue in order.
//
// The queue is deliberately lossy under pressure: when full, Enqueue drops
// the event and the gateway's own retry delivers it again later. The ledger
// idempotency key makes the redelivery safe.
type WebhookEventQueue struct {
	ch        chan *domain.WebhookEvent
	processor ports.EventProcessor
	log       zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewWebhookEventQueue creates a queue with the given buffer size.
func NewWebhookEventQueue(size int, processor ports.EventProcessor, log zerolog.Logger) *WebhookEventQueue {
	return &WebhookEventQueue{
		ch:        make(chan *domain.WebhookEvent, size),
		processor: processor,
		log:       log,
	}
}

// Enqueue publishes an event for asynchronous processing. Returns false when
// the queue is full or already shut down; the caller still acks the webhook.
func (q *WebhookEventQueue) Enqueue(ev *domain.WebhookEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.log.Warn().Str("event", ev.Event).Msg("event queue closed, dropping webhook event")
		return false
	}
	select {
	case q.ch <- ev:
		return true
	default:
		q.log.Warn().
			Str("event", ev.Event).
			Str("payment_id", ev.Payload.Payment.Entity.ID).
			Msg("event queue full, dropping webhook event")
		return false
	}
}

// Start launches the worker goroutine. The worker runs until Shutdown closes
// the queue, finishing whatever is already buffered. ctx bounds individual
// Process calls, not the worker's lifetime.
func (q *WebhookEventQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for ev := range q.ch {
			q.handle(ctx, ev)
		}
	}()
}

// handle isolates one event: a panic or error in processing must never take
// down the worker loop.
func (q *WebhookEventQueue) handle(ctx context.Context, ev *domain.WebhookEvent) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().
				Interface("panic", r).
				Str("event", ev.Event).
				Str("payment_id", ev.Payload.Payment.Entity.ID).
				Msg("panic while processing webhook event")
		}
	}()

	if err := q.processor.Process(ctx, ev); err != nil {
		q.log.Error().
			Err(err).
			Str("event", ev.Event).
			Str("payment_id", ev.Payload.Payment.Entity.ID).
			Msg("webhook event processing failed")
	}
}

// Shutdown stops accepting events and waits for the worker to drain the
// buffer, or for ctx to expire, whichever comes first.
func (q *WebhookEventQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
