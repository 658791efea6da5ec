// Package publisher delivers audit events to a store, either synchronously or
// through a bounded async buffer that is drained on Close.
package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	id "tranchor/pkg/domain"
	audit "tranchor/pkg/platform/audit"
)

type Publisher struct {
	store audit.Store

	mu     sync.Mutex
	inbox  chan audit.Event
	done   chan struct{}
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables async delivery with the given buffer size. Events
// that arrive when the buffer is full are dropped rather than blocking the
// hot path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records an audit event. In sync mode the store append runs inline; in
// async mode the event is enqueued and persisted by the drain goroutine.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	select {
	case p.inbox <- event:
	default:
		// Buffer full: drop rather than block the calling operation.
	}
	return nil
}

// List returns the recorded events for a participant.
func (p *Publisher) List(ctx context.Context, participant id.ParticipantID) ([]audit.Event, error) {
	return p.store.ListByParticipant(ctx, participant)
}

// Close drains any buffered events and stops the background worker.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Detached context: the request that produced the event may be gone.
		_ = p.store.Append(context.Background(), event)
	}
}
