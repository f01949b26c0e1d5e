package contracts

import "context"

// Broker is the wire-level transport behind the queue layer. Subjects are
// dot-separated; a subscribe pattern may contain "*" (one token) or a
// trailing ">" (remaining tokens).
type Broker interface {
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe starts delivering matching messages to handler until ctx is
	// cancelled or the broker is closed. It does not block.
	Subscribe(ctx context.Context, pattern string, handler func(subject string, data []byte) error) error

	Close() error
}
