package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Strob0t/notestream/internal/domain/event"
)

var errBrokenPipe = errors.New("write: broken pipe")

// fakeTransport records frames written to it and can be told to fail.
type fakeTransport struct {
	mu      sync.Mutex
	frames  []string
	pings   int
	fail    bool
	closed  bool
	written chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{written: make(chan struct{}, 1024)}
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) WriteFrame(_ context.Context, fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errBrokenPipe
	}
	f.frames = append(f.frames, string(fr.SSE))
	select {
	case f.written <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeTransport) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errBrokenPipe
	}
	f.pings++
	return nil
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *fakeTransport) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.frames...)
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

// waitFrames blocks until the transport holds n frames or the deadline passes.
func (f *fakeTransport) waitFrames(n int) []string {
	deadline := time.After(2 * time.Second)
	for {
		if got := f.got(); len(got) >= n {
			return got
		}
		select {
		case <-f.written:
		case <-deadline:
			return f.got()
		}
	}
}

// liveConn returns a registered, active connection over a fake transport.
func liveConn(r *Registry, id string) (*Conn, *fakeTransport) {
	ft := newFakeTransport()
	c := NewConn(id, "127.0.0.1:0", ft, time.Second)
	if err := r.Add(c); err != nil {
		panic(err)
	}
	if err := c.Activate(context.Background()); err != nil {
		panic(err)
	}
	return c, ft
}

// sliceSnapshotter emits a fixed list of events.
type sliceSnapshotter struct {
	events []event.Event
	err    error
	// gate, when set, is closed by the test to let the snapshot finish.
	started chan struct{}
	gate    chan struct{}
}

func (s *sliceSnapshotter) Snapshot(ctx context.Context, emit func(event.Event) error) error {
	if s.started != nil {
		close(s.started)
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, ev := range s.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return s.err
}
