package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace-payments/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu     sync.Mutex
	events []string
	block   chan struct{} // when set, Process waits until it is closed
	panicOn string        // payment id that triggers a panic
}

func (p *recordingProcessor) Process(_ context.Context, ev *domain.WebhookEvent) error {
	if p.block != nil {
		<-p.block
	}
	if p.panicOn != "" && ev.Payload.Payment.Entity.ID == p.panicOn {
		panic("boom")
	}
	p.mu.Lock()
	p.events = append(p.events, ev.Payload.Payment.Entity.ID)
	p.mu.Unlock()
	return nil
}

func (p *recordingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func TestEventQueue_ProcessesEnqueuedEvents(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewWebhookEventQueue(8, proc, zerolog.Nop())
	q.Start(context.Background())

	assert.True(t, q.Enqueue(capturedEvent("pay_1", "emp-1", 100)))
	assert.True(t, q.Enqueue(capturedEvent("pay_2", "emp-1", 200)))

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, []string{"pay_1", "pay_2"}, proc.processed())
}

func TestEventQueue_DropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	proc := &recordingProcessor{block: block}
	q := NewWebhookEventQueue(1, proc, zerolog.Nop())
	q.Start(context.Background())

	// First event is picked up by the worker and parks on block; the second
	// fills the buffer; the third has nowhere to go.
	assert.True(t, q.Enqueue(capturedEvent("pay_1", "emp-1", 100)))
	require.Eventually(t, func() bool {
		return q.Enqueue(capturedEvent("pay_2", "emp-1", 200))
	}, time.Second, 5*time.Millisecond)
	assert.False(t, q.Enqueue(capturedEvent("pay_3", "emp-1", 300)))

	close(block)
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestEventQueue_EnqueueAfterShutdownReturnsFalse(t *testing.T) {
	q := NewWebhookEventQueue(8, &recordingProcessor{}, zerolog.Nop())
	q.Start(context.Background())
	require.NoError(t, q.Shutdown(context.Background()))

	assert.False(t, q.Enqueue(capturedEvent("pay_1", "emp-1", 100)))
}

func TestEventQueue_ShutdownDrainsBufferedEvents(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewWebhookEventQueue(16, proc, zerolog.Nop())

	// Enqueue before the worker starts so everything sits in the buffer.
	for _, id := range []string{"pay_1", "pay_2", "pay_3"} {
		require.True(t, q.Enqueue(capturedEvent(id, "emp-1", 100)))
	}
	q.Start(context.Background())

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, []string{"pay_1", "pay_2", "pay_3"}, proc.processed())
}

func TestEventQueue_WorkerSurvivesPanic(t *testing.T) {
	proc := &recordingProcessor{panicOn: "pay_1"}
	q := NewWebhookEventQueue(8, proc, zerolog.Nop())
	q.Start(context.Background())

	// The panic on pay_1 must not kill the worker: pay_2 still gets through.
	assert.True(t, q.Enqueue(capturedEvent("pay_1", "emp-1", 100)))
	assert.True(t, q.Enqueue(capturedEvent("pay_2", "emp-1", 200)))

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Equal(t, []string{"pay_2"}, proc.processed())
}

func TestEventQueue_ShutdownHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	proc := &recordingProcessor{block: block}
	q := NewWebhookEventQueue(8, proc, zerolog.Nop())
	q.Start(context.Background())

	require.True(t, q.Enqueue(capturedEvent("pay_1", "emp-1", 100)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)
}
