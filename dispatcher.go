// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package b64img

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// State is the readiness of a Dispatcher's worker.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "uninitialized"
}

// Dispatcher runs an Engine on a dedicated worker goroutine. Submit never
// blocks on the work itself; results come back through the returned Task.
//
// Only one request runs at a time. Submitting while another request is in
// flight fails with ErrBusy rather than queueing.
type Dispatcher struct {
	engine *Engine

	mu       sync.Mutex
	state    State
	cause    error
	inflight *Task

	requests chan *Task
	eg       *errgroup.Group
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewDispatcher creates a Dispatcher for engine. Call Start before Submit.
func NewDispatcher(engine *Engine) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		requests: make(chan *Task, 1),
	}
}

// Start validates the engine and launches the worker goroutine. A failed
// Start leaves the dispatcher in StateFailed for good.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateUninitialized {
		return &Error{Kind: KindNotReady, Op: "start", Err: fmt.Errorf("dispatcher is %s", d.state)}
	}
	if err := d.engine.Validate(); err != nil {
		d.state = StateFailed
		d.cause = err
		d.engine.logger.Error().Err(err).Msg("worker startup failed")
		return err
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.eg, d.ctx = errgroup.WithContext(ctx)
	d.eg.Go(d.work)
	d.state = StateReady
	d.engine.logger.Debug().Msg("worker ready")
	return nil
}

// State returns the current readiness state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Submit hands req to the worker. An empty req.ID is replaced by a new UUID.
func (d *Dispatcher) Submit(req Request) (*Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateReady && d.ctx.Err() != nil {
		return nil, &Error{Kind: KindNotReady, Op: "submit", Err: fmt.Errorf("worker stopped: %w", context.Cause(d.ctx))}
	}
	if d.state != StateReady {
		cause := d.cause
		if cause == nil {
			cause = fmt.Errorf("dispatcher is %s", d.state)
		}
		return nil, &Error{Kind: KindNotReady, Op: "submit", Err: cause}
	}
	if d.inflight != nil {
		return nil, &Error{Kind: KindBusy, Op: "submit", Err: fmt.Errorf("request %s is still running", d.inflight.ID)}
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	t := newTask(req)
	d.inflight = t
	d.eg.Go(func() error { return t.pump(d.ctx) })
	// The buffer holds one request and at most one is ever pending.
	d.requests <- t
	return t, nil
}

// Do submits req and blocks until it finishes, passing each progress message
// to onProgress (which may be nil).
func (d *Dispatcher) Do(ctx context.Context, req Request, onProgress func(Message)) (Message, error) {
	t, err := d.Submit(req)
	if err != nil {
		return Message{}, err
	}
	for {
		select {
		case m, ok := <-t.Events():
			if !ok {
				return t.Wait(ctx)
			}
			if m.Kind == KindProgress && onProgress != nil {
				onProgress(m)
			}
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

// Close stops the worker once the running request, if any, has finished.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.state != StateReady {
		d.state = StateClosed
		d.mu.Unlock()
		return nil
	}
	d.state = StateClosed
	d.cancel()
	d.mu.Unlock()

	return d.eg.Wait()
}

func (d *Dispatcher) work() error {
	for {
		if d.ctx.Err() != nil {
			d.stop()
			return nil
		}
		select {
		case <-d.ctx.Done():
			d.stop()
			return nil
		case t := <-d.requests:
			_ = d.engine.Process(t.Request, func(m Message) {
				if m.Terminal() {
					d.release(t)
				}
				t.push(m)
			})
		}
	}
}

// stop runs when the worker's context ends, whether through Close or the
// parent context. A request accepted but not yet started gets a terminal
// error, and later submissions are refused.
func (d *Dispatcher) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	cause := fmt.Errorf("worker stopped: %w", context.Cause(d.ctx))
	if d.state == StateReady {
		d.state = StateClosed
		d.cause = cause
	}
	select {
	case t := <-d.requests:
		err := &Error{Kind: KindNotReady, Op: "dispatch", Err: errors.New("dispatcher closed before the request ran")}
		t.push(Message{Kind: KindError, RequestID: t.ID, ErrMessage: err.Error(), err: err})
	default:
	}
	d.inflight = nil
	d.engine.logger.Debug().Err(cause).Msg("worker stopped")
}

// release clears the in-flight slot before the terminal message is
// delivered, so a caller reacting to it can submit again immediately.
func (d *Dispatcher) release(t *Task) {
	d.mu.Lock()
	if d.inflight == t {
		d.inflight = nil
	}
	d.mu.Unlock()
}

// Task is the caller's handle on one submitted request. Callers that only
// need the outcome may call Wait and ignore Events; undelivered messages are
// dropped when the dispatcher closes.
type Task struct {
	ID      string
	Request Request

	events chan Message
	notify chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	queue    []Message
	sealed   bool
	terminal Message
}

func newTask(req Request) *Task {
	return &Task{
		ID:      req.ID,
		Request: req,
		events:  make(chan Message),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Events streams the task's messages in send order: zero or more progress
// messages, then exactly one terminal message, then the channel is closed.
func (t *Task) Events() <-chan Message {
	return t.events
}

// Done is closed once the terminal message has been produced.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its terminal message. For
// a failed task the error keeps its ErrorKind.
func (t *Task) Wait(ctx context.Context) (Message, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminal, t.terminal.Err()
}

// push queues m for delivery without ever blocking the worker.
func (t *Task) push(m Message) {
	t.mu.Lock()
	if t.sealed {
		t.mu.Unlock()
		return
	}
	t.queue = append(t.queue, m)
	if m.Terminal() {
		t.sealed = true
		t.terminal = m
		close(t.done)
	}
	t.mu.Unlock()

	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *Task) drain() ([]Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.queue
	t.queue = nil
	return msgs, t.sealed
}

// pump forwards queued messages to the events channel until the terminal
// message has been delivered or ctx ends.
func (t *Task) pump(ctx context.Context) error {
	defer close(t.events)
	for {
		msgs, sealed := t.drain()
		for _, m := range msgs {
			select {
			case t.events <- m:
			case <-ctx.Done():
				return nil
			}
		}
		if sealed {
			return nil
		}
		select {
		case <-t.notify:
		case <-ctx.Done():
			return nil
		}
	}
}

// Handlers receive routed messages. Nil handlers are skipped.
type Handlers struct {
	OnProgress func(percent int, label string)
	OnExtract  func(results []ExtractedImage, metrics Metrics)
	OnSample   func(b64 string, metrics Metrics)
	OnEncode   func(b64 string, metrics Metrics)
	OnError    func(err error)
}

// Route delivers every message from events to the matching handler until the
// channel closes. It returns the error of a failed request, if any.
func Route(events <-chan Message, h Handlers) error {
	var failure error
	for m := range events {
		var metrics Metrics
		if m.Metrics != nil {
			metrics = *m.Metrics
		}
		switch m.Kind {
		case KindProgress:
			if h.OnProgress != nil {
				h.OnProgress(m.Percent, m.Label)
			}
		case KindExtractResult:
			if h.OnExtract != nil {
				h.OnExtract(m.Results, metrics)
			}
		case KindSampleResult:
			if h.OnSample != nil {
				h.OnSample(m.Base64, metrics)
			}
		case KindEncodeResult:
			if h.OnEncode != nil {
				h.OnEncode(m.Base64, metrics)
			}
		case KindError:
			failure = m.Err()
			if h.OnError != nil {
				h.OnError(failure)
			}
		default:
			failure = errors.Join(failure, fmt.Errorf("unknown message kind %q", m.Kind))
		}
	}
	return failure
}
