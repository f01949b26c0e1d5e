package memory

import (
	"context"
	"testing"
	"time"

	"github.com/appwire/framework/pkg/errors"
)

func collect(t *testing.T, b *Broker, ctx context.Context, pattern string) <-chan string {
	t.Helper()
	ch := make(chan string, 16)
	err := b.Subscribe(ctx, pattern, func(subject string, data []byte) error {
		ch <- subject + ":" + string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

func expect(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestBroker_PatternDelivery(t *testing.T) {
	b := New()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exact := collect(t, b, ctx, "pub.sensor.1")
	wild := collect(t, b, ctx, "pub.*.1")
	tail := collect(t, b, ctx, "pub.>")

	if err := b.Publish(ctx, "pub.sensor.1", []byte("on")); err != nil {
		t.Fatal(err)
	}
	expect(t, exact, "pub.sensor.1:on")
	expect(t, wild, "pub.sensor.1:on")
	expect(t, tail, "pub.sensor.1:on")

	if err := b.Publish(ctx, "pub.actuator.2", []byte("off")); err != nil {
		t.Fatal(err)
	}
	expect(t, tail, "pub.actuator.2:off")
	select {
	case got := <-exact:
		t.Errorf("exact subscription must not receive %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_SubscriptionEndsWithContext(t *testing.T) {
	b := New()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch := collect(t, b, ctx, "a.b")
	cancel()

	// After cancellation the delivery goroutine drains away; publishes still
	// succeed but nothing arrives.
	time.Sleep(20 * time.Millisecond)
	if err := b.Publish(context.Background(), "a.b", []byte("x")); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		t.Errorf("cancelled subscription must not receive %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_ClosedRefusesTraffic(t *testing.T) {
	b := New()
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Publish(context.Background(), "a", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on publish, got %v", err)
	}
	err := b.Subscribe(context.Background(), "a", func(string, []byte) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on subscribe, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("double close is harmless, got %v", err)
	}
}
