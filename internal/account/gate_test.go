package account

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type senderFunc func(ctx context.Context, email string) error

func (f senderFunc) SendMagicLink(ctx context.Context, email string) error {
	return f(ctx, email)
}

func TestGate_Sent(t *testing.T) {
	var got string
	g := NewGate(senderFunc(func(_ context.Context, email string) error {
		got = email
		return nil
	}))

	res := g.Submit(context.Background(), "  alice@example.com ")
	if res.Status != GateSent {
		t.Fatalf("status = %v, want GateSent", res.Status)
	}
	if res.Message != MagicLinkSentMessage {
		t.Errorf("message = %q, want %q", res.Message, MagicLinkSentMessage)
	}
	if got != "alice@example.com" {
		t.Errorf("sender got %q, want trimmed address", got)
	}
	if g.InFlight("alice@example.com") {
		t.Error("address still in flight after completion")
	}
}

func TestGate_Failed(t *testing.T) {
	g := NewGate(senderFunc(func(context.Context, string) error {
		return errors.New("email rate limit exceeded")
	}))

	res := g.Submit(context.Background(), "alice@example.com")
	if res.Status != GateFailed {
		t.Fatalf("status = %v, want GateFailed", res.Status)
	}
	if res.Message != "email rate limit exceeded" {
		t.Errorf("message = %q", res.Message)
	}
	var serr *ServiceError
	if !errors.As(res.Err, &serr) {
		t.Errorf("err = %T, want *ServiceError", res.Err)
	}
}

func TestGate_SkipsWhileInFlight(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	unblock := make(chan struct{})
	g := NewGate(senderFunc(func(context.Context, string) error {
		if calls.Add(1) == 1 {
			close(entered)
			<-unblock
		}
		return nil
	}))
	ctx := context.Background()

	first := make(chan GateResult)
	go func() { first <- g.Submit(ctx, "Alice@Example.com") }()
	<-entered

	for _, email := range []string{"Alice@Example.com", "alice@example.com", " ALICE@example.com"} {
		if res := g.Submit(ctx, email); res.Status != GateSkipped {
			t.Errorf("Submit(%q) status = %v, want GateSkipped", email, res.Status)
		}
	}
	if res := g.Submit(ctx, "bob@example.com"); res.Status != GateSent {
		t.Errorf("other address status = %v, want GateSent", res.Status)
	}

	close(unblock)
	if res := <-first; res.Status != GateSent {
		t.Errorf("first status = %v, want GateSent", res.Status)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("sender calls = %d, want 2", n)
	}
}
