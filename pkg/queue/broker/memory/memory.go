package memory

import (
	"context"
	"sync"

	"github.com/appwire/framework/pkg/errors"
	"github.com/appwire/framework/pkg/queue"
)

var newBrokerCode = errors.WithPrefix("MEMBROKER")

var (
	ErrClosed = newBrokerCode().New("broker is closed")
)

type delivery struct {
	subject string
	data    []byte
}

type subscription struct {
	pattern string
	ch      chan delivery
}

// Broker is an in-process pub/sub broker for tests and single-binary
// deployments. Each subscription is served by its own goroutine; a full
// subscriber buffer drops the message rather than blocking publishers.
type Broker struct {
	mu     sync.RWMutex
	subs   []*subscription
	done   chan struct{}
	buffer int
	closed bool
}

type Option func(*Broker)

// WithBuffer sets the per-subscription delivery buffer.
func WithBuffer(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func New(opts ...Option) *Broker {
	b := &Broker{
		done:   make(chan struct{}),
		buffer: 64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Broker) Publish(_ context.Context, subject string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, sub := range b.subs {
		if !queue.MatchSubject(sub.pattern, subject) {
			continue
		}
		select {
		case sub.ch <- delivery{subject: subject, data: data}:
		default:
			// slow consumer, message dropped
		}
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, pattern string, handler func(subject string, data []byte) error) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	sub := &subscription{pattern: pattern, ch: make(chan delivery, b.buffer)}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go func() {
		defer b.remove(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case d := <-sub.ch:
				_ = handler(d.subject, d.data)
			}
		}
	}()
	return nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	b.subs = nil
	return nil
}

func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
