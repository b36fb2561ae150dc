// Package resilience guards note store reads with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the store while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// passErr carries an error that is a valid answer from a healthy store.
type passErr struct{ err error }

func (p passErr) Error() string { return p.err.Error() }
func (p passErr) Unwrap() error { return p.err }

// Pass marks err as an answer rather than a failure: Do returns it
// unwrapped and counts the call as a success. Lookups use it for
// not-found results.
func Pass(err error) error {
	if err == nil {
		return nil
	}
	return passErr{err: err}
}

// Breaker opens after maxFailures consecutive store failures and rejects
// calls for cooldown. It then lets a single probe through; the probe's
// outcome closes or reopens it.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a closed breaker. name labels its log lines.
func NewBreaker(name string, maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: max(maxFailures, 1),
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// State reports the current position. An open breaker whose cooldown has
// elapsed reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		return HalfOpen
	}
	return b.state
}

// Do calls fn unless the breaker is open. Errors wrapped with Pass and
// errors caused by ctx ending (the caller went away) do not count as
// store failures.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.acquire() {
		return ErrCircuitOpen
	}

	err := fn(ctx)

	var pass passErr
	switch {
	case err == nil:
		b.record(true)
		return nil
	case errors.As(err, &pass):
		b.record(true)
		return pass.err
	case ctx.Err() != nil:
		b.release()
		return err
	default:
		b.record(false)
		return err
	}
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.transition(HalfOpen)
		fallthrough
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// release ends a probe that produced no verdict.
func (b *Breaker) release() {
	b.mu.Lock()
	b.probing = false
	b.mu.Unlock()
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if ok {
		b.failures = 0
		b.transition(Closed)
		return
	}
	b.failures++
	if b.state == HalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		b.transition(Open)
	}
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if to == Open {
		slog.Warn("circuit breaker opened", "breaker", b.name, "from", from.String(), "failures", b.failures)
		return
	}
	slog.Info("circuit breaker state changed", "breaker", b.name, "from", from.String(), "to", to.String())
}
