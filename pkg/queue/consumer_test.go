package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/appwire/framework/pkg/errors"
	"github.com/appwire/framework/pkg/inject"
	"github.com/appwire/framework/pkg/queue"
	"github.com/appwire/framework/pkg/queue/broker/memory"
)

func startConsumer(t *testing.T, c *queue.Consumer) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	return ctx
}

func await[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		panic("unreachable")
	}
}

func TestConsumer_PlaceholderBindsToken(t *testing.T) {
	broker := memory.New()
	defer broker.Close()
	c := queue.NewConsumer(broker)

	got := make(chan string, 1)
	err := c.Subscribe("pub.{id}.state", func(id string, data []byte) {
		got <- id + "=" + string(data)
	}, inject.WithParams("id"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := startConsumer(t, c)

	if err := c.Publish(ctx, queue.NewMsg("pub.42.state", []byte("on"))); err != nil {
		t.Fatal(err)
	}
	if v := await(t, got); v != "42=on" {
		t.Errorf("unexpected delivery: %q", v)
	}
}

func TestConsumer_UnresolvableHandlerFailsAtSubscribe(t *testing.T) {
	c := queue.NewConsumer(memory.New())
	err := c.Subscribe("pub.state", func(n int) {})
	if !errors.Is(err, queue.ErrSubscribe) {
		t.Fatalf("expected ErrSubscribe, got %v", err)
	}
	if !errors.Is(err, inject.ErrNoConstructor) {
		t.Errorf("the cause must be the resolution failure, got %v", err)
	}
}

func TestConsumer_BadSubjectFailsAtSubscribe(t *testing.T) {
	c := queue.NewConsumer(memory.New())
	err := c.Subscribe("pub.sensor-{id}", func(data []byte) {})
	if !errors.Is(err, queue.ErrBadSubject) {
		t.Errorf("expected ErrBadSubject, got %v", err)
	}
}

func TestConsumer_TokenAndHeaderMarkers(t *testing.T) {
	broker := memory.New()
	defer broker.Close()
	c := queue.NewConsumer(broker)

	got := make(chan string, 1)
	err := c.Subscribe("evt.>", func(data []byte, kind string, trace string) {
		got <- kind + "/" + trace
	}, inject.WithDefaults(queue.Token{Index: 1}, queue.Header{Key: "trace", Default: "none"}))
	if err != nil {
		t.Fatal(err)
	}
	ctx := startConsumer(t, c)

	m := queue.NewMsg("evt.boot.finished", []byte("x")).SetHeader("trace", "t-1")
	if err := c.Publish(ctx, m); err != nil {
		t.Fatal(err)
	}
	if v := await(t, got); v != "boot/t-1" {
		t.Errorf("unexpected delivery: %q", v)
	}

	if err := c.Publish(ctx, queue.NewMsg("evt.boot.finished", []byte("x"))); err != nil {
		t.Fatal(err)
	}
	if v := await(t, got); v != "boot/none" {
		t.Errorf("header default must apply, got %q", v)
	}
}

func TestConsumer_PrefixIsTransparent(t *testing.T) {
	broker := memory.New()
	defer broker.Close()
	c := queue.NewConsumer(broker, queue.WithPrefix("tenant1"))

	got := make(chan string, 1)
	err := c.Subscribe("pub.{id}", func(id string, m *queue.Msg) {
		got <- id + "@" + m.Subject
	}, inject.WithParams("id"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := startConsumer(t, c)

	if err := c.Publish(ctx, queue.NewMsg("pub.7", nil)); err != nil {
		t.Fatal(err)
	}
	if v := await(t, got); v != "7@pub.7" {
		t.Errorf("handlers must see unprefixed subjects, got %q", v)
	}
}

func TestConsumer_ReplyIsPublished(t *testing.T) {
	broker := memory.New()
	defer broker.Close()
	c := queue.NewConsumer(broker)

	if err := c.Subscribe("sum", func(data []byte) (any, error) {
		return len(data), nil
	}); err != nil {
		t.Fatal(err)
	}
	got := make(chan string, 1)
	if err := c.Subscribe("answers", func(m *queue.Msg) {
		got <- string(m.Data)
	}); err != nil {
		t.Fatal(err)
	}
	ctx := startConsumer(t, c)

	m := queue.NewMsg("sum", []byte("abcd"))
	m.Reply = "answers"
	if err := c.Publish(ctx, m); err != nil {
		t.Fatal(err)
	}
	if v := await(t, got); v != "4" {
		t.Errorf("unexpected reply payload: %q", v)
	}
}
