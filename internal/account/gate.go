package account

import (
	"context"
	"strings"
	"sync"
)

// MagicLinkSentMessage acknowledges a successful sign-in request.
const MagicLinkSentMessage = "Check your email for the login link!"

// LinkSender delivers a sign-in link to an email address.
type LinkSender interface {
	SendMagicLink(ctx context.Context, email string) error
}

// GateStatus is the outcome of a Gate submission.
type GateStatus int

const (
	GateSent GateStatus = iota
	GateSkipped
	GateFailed
)

func (s GateStatus) String() string {
	switch s {
	case GateSent:
		return "sent"
	case GateSkipped:
		return "skipped"
	case GateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// GateResult carries the status and the notification text of a submission.
type GateResult struct {
	Status  GateStatus
	Message string
	Err     error
}

// Gate requests sign-in links. While a request for an address is outstanding,
// further submissions for the same address are skipped without calling the sender.
type Gate struct {
	sender LinkSender

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewGate(sender LinkSender) *Gate {
	return &Gate{
		sender:   sender,
		inFlight: make(map[string]struct{}),
	}
}

func (g *Gate) Submit(ctx context.Context, email string) GateResult {
	email = strings.TrimSpace(email)
	key := strings.ToLower(email)

	g.mu.Lock()
	if _, busy := g.inFlight[key]; busy {
		g.mu.Unlock()
		return GateResult{Status: GateSkipped}
	}
	g.inFlight[key] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}()

	if err := g.sender.SendMagicLink(ctx, email); err != nil {
		serr := &ServiceError{Op: "send magic link", Err: err}
		return GateResult{Status: GateFailed, Message: serr.Error(), Err: serr}
	}

	return GateResult{Status: GateSent, Message: MagicLinkSentMessage}
}

// InFlight reports whether a request for email is outstanding.
func (g *Gate) InFlight(email string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
