package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/inject"
	"github.com/appwire/framework/pkg/logger"
)

// Token binds a handler parameter to a subject token by position.
type Token struct {
	Index int
}

func (t Token) Construct(*inject.Injector[*Msg]) (inject.Constructor[*Msg], error) {
	return func(m *Msg) (any, error) {
		tok, ok := m.Token(t.Index)
		if !ok {
			return nil, ErrNoToken.
				WithDetail("subject", m.Subject).
				WithDetail("index", t.Index)
		}
		return tok, nil
	}, nil
}

// Header binds a handler parameter to a message header. A missing header
// resolves to Default when one is set, otherwise it is an error.
type Header struct {
	Key     string
	Default string
	Lax     bool
}

func (h Header) Construct(*inject.Injector[*Msg]) (inject.Constructor[*Msg], error) {
	return func(m *Msg) (any, error) {
		if v, ok := m.Header[h.Key]; ok {
			return v, nil
		}
		if h.Default != "" || h.Lax {
			return h.Default, nil
		}
		return nil, ErrNoHeader.WithDetail("key", h.Key)
	}, nil
}

type subscription struct {
	subject string
	handler inject.Handler[*Msg]
}

// Consumer subscribes injected handlers to broker subjects. Each
// subscription gets its own injector clone carrying name constructors for
// the subject's placeholders, so pub.{id}.state handlers can take id as a
// parameter.
type Consumer struct {
	broker contracts.Broker
	log    contracts.Logger
	prefix string
	base   *inject.Injector[*Msg]
	subs   []subscription
}

type ConsumerOption func(*Consumer)

func WithLogger(log contracts.Logger) ConsumerOption {
	return func(c *Consumer) { c.log = log }
}

// WithPrefix namespaces every subscription and publication subject.
func WithPrefix(prefix string) ConsumerOption {
	return func(c *Consumer) { c.prefix = prefix }
}

func NewConsumer(broker contracts.Broker, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		broker: broker,
		log:    logger.Nop(),
		base:   inject.New[*Msg](),
	}
	inject.Type(c.base, func(m *Msg) ([]byte, error) { return m.Data, nil })
	inject.Type(c.base, func(m *Msg) (map[string]string, error) { return m.Header, nil })
	c.base.RegisterMarker(Token{})
	c.base.RegisterMarker(Header{})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Injector exposes the base injector so callers can register their own
// constructors and markers before subscribing.
func (c *Consumer) Injector() *inject.Injector[*Msg] { return c.base }

// Subscribe wires fn to every message matching subject. Placeholder tokens
// become name constructors on a cloned injector; resolution failures
// surface here, before anything reaches the broker.
func (c *Consumer) Subscribe(subject string, fn any, opts ...inject.WrapOption) error {
	pattern, holders, err := parseSubject(subject)
	if err != nil {
		return err
	}

	ij := c.base
	if len(holders) > 0 {
		ij = ij.Clone()
		for _, ph := range holders {
			index := ph.index
			inject.Name(ij, ph.name, func(m *Msg) (string, error) {
				tok, ok := m.Token(index)
				if !ok {
					return "", ErrNoToken.
						WithDetail("subject", m.Subject).
						WithDetail("index", index)
				}
				return tok, nil
			})
		}
	}

	h, err := ij.Wrap(fn, opts...)
	if err != nil {
		return ErrSubscribe.WithDetail("subject", subject).WithCause(err)
	}
	c.subs = append(c.subs, subscription{subject: c.prefixed(pattern), handler: h})
	return nil
}

// Publish sends a message through the broker, applying the prefix and
// encoding the envelope.
func (c *Consumer) Publish(ctx context.Context, m *Msg) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return ErrPublish.WithDetail("subject", m.Subject).WithCause(err)
	}
	if err := c.broker.Publish(ctx, c.prefixed(m.Subject), payload); err != nil {
		return ErrPublish.WithDetail("subject", m.Subject).WithCause(err)
	}
	return nil
}

// Start opens every subscription against the broker and returns. Message
// dispatch then runs on the broker's delivery goroutines until ctx ends.
func (c *Consumer) Start(ctx context.Context) error {
	for _, sub := range c.subs {
		sub := sub
		err := c.broker.Subscribe(ctx, sub.subject, func(subject string, data []byte) error {
			return c.dispatch(ctx, subject, data, sub.handler)
		})
		if err != nil {
			return ErrSubscribe.WithDetail("subject", sub.subject).WithCause(err)
		}
		c.log.Debug("subscribed", "subject", sub.subject)
	}
	return nil
}

// Task adapts the consumer to a supervised container task: subscribe, then
// serve until cancelled.
func (c *Consumer) Task(name string) *container.Task {
	return container.NewTask(func(ctx context.Context, _ *container.Container) (any, error) {
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}, name)
}

func (c *Consumer) dispatch(ctx context.Context, subject string, data []byte, h inject.Handler[*Msg]) error {
	m := &Msg{}
	if err := json.Unmarshal(data, m); err != nil {
		c.log.Warn("dropping undecodable message", "subject", subject, "error", err)
		return ErrDecode.WithDetail("subject", subject).WithCause(err)
	}
	m.Subject = c.unprefixed(subject)

	result, err := h(m)
	if err != nil {
		c.log.Error("handler failed", "subject", m.Subject, "msg_id", m.ID, "error", err)
		return err
	}
	if m.Reply == "" || result == nil {
		return nil
	}

	data, err = json.Marshal(result)
	if err != nil {
		return ErrPublish.WithDetail("subject", m.Reply).WithCause(err)
	}
	reply := NewMsg(m.Reply, data)
	return c.Publish(ctx, reply)
}

func (c *Consumer) prefixed(subject string) string {
	if c.prefix == "" {
		return subject
	}
	return c.prefix + "." + subject
}

func (c *Consumer) unprefixed(subject string) string {
	if c.prefix == "" {
		return subject
	}
	p := c.prefix + "."
	if len(subject) > len(p) && subject[:len(p)] == p {
		return subject[len(p):]
	}
	return subject
}
