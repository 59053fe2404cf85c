package ledgerSystem

import (
	"context"
	"errors"
	"sync"

	"bridge-node/lib/logger"
)

// EventSink receives the notifications of a committed operation, in
// emission order. A sink failure never undoes the operation.
type EventSink interface {
	Emit(ctx context.Context, events ...Event) error
}

type discardSink struct{}

func (discardSink) Emit(context.Context, ...Event) error { return nil }

var Discard EventSink = discardSink{}

// EventLog keeps every event in memory.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *EventLog) Emit(_ context.Context, events ...Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Drain returns the collected events and clears the log.
func (l *EventLog) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events
	l.events = nil
	return out
}

type LogSink struct {
	Log logger.Logger
}

func (s LogSink) Emit(_ context.Context, events ...Event) error {
	for _, e := range events {
		switch e.Kind {
		case TokenUpdate:
			s.Log.Info("token update", "data_nonce", e.Nonce)
		case Mint, Burn:
			s.Log.Info(string(e.Kind), "account", e.Account, "amount", e.Amount)
		case Remit:
			s.Log.Info("remit", "from", e.Account, "from_amount", e.Amount, "to", e.To, "to_amount", e.ToAmount)
		}
	}
	return nil
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []EventSink

func (m MultiSink) Emit(ctx context.Context, events ...Event) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Emit(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
