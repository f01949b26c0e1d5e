package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/errors"
	"github.com/appwire/framework/pkg/queue"
)

var newBrokerCode = errors.WithPrefix("REDISBROKER")

var (
	ErrConnect = newBrokerCode().New("could not reach redis at {{.addr}}")
	ErrPublish = newBrokerCode().New("publish to {{.subject}} failed")
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Broker carries queue traffic over redis pub/sub channels.
type Broker struct {
	client *redis.Client
}

var _ contracts.Broker = (*Broker)(nil)

func New(opts Options) *Broker {
	return &Broker{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
	}
}

// Ping verifies connectivity, usually from a startup hook.
func (b *Broker) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return ErrConnect.WithDetail("addr", b.client.Options().Addr).WithCause(err)
	}
	return nil
}

func (b *Broker) Publish(ctx context.Context, subject string, data []byte) error {
	if err := b.client.Publish(ctx, subject, data).Err(); err != nil {
		return ErrPublish.WithDetail("subject", subject).WithCause(err)
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, pattern string, handler func(subject string, data []byte) error) error {
	pubsub := b.client.PSubscribe(ctx, toRedisPattern(pattern))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return ErrConnect.WithDetail("addr", b.client.Options().Addr).WithCause(err)
	}

	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				// Redis globs overmatch across dots; re-check with token
				// semantics before dispatching.
				if !queue.MatchSubject(pattern, m.Channel) {
					continue
				}
				_ = handler(m.Channel, []byte(m.Payload))
			}
		}
	}()
	return nil
}

func (b *Broker) Close() error {
	return b.client.Close()
}

// toRedisPattern maps subject wildcards onto redis glob patterns. Redis
// globs do not know token boundaries, so both "*" and a trailing ">"
// become "*"; exact matching against the delivered channel stays with the
// queue layer.
func toRedisPattern(pattern string) string {
	tokens := strings.Split(pattern, ".")
	for i, tok := range tokens {
		if tok == ">" {
			tokens[i] = "*"
		}
	}
	return strings.Join(tokens, ".")
}
