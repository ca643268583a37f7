// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package session

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
)

var (
	// ErrBusy is returned when a user's mailbox is full.
	ErrBusy = errors.New("session: too many pending messages")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: dispatcher closed")

	// ErrPanic wraps a recovered panic from a turn handler.
	ErrPanic = errors.New("session: handler panicked")
)

// DefaultMailboxSize is the number of turns a user may have queued.
const DefaultMailboxSize = 16

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

type mailbox struct {
	jobs    chan job
	pending int
}

// Dispatcher serializes work per user. Each user with queued work has one
// worker goroutine; it exits once the mailbox drains.
type Dispatcher struct {
	size int

	mu        sync.Mutex
	mailboxes map[int64]*mailbox
	closed    bool
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher with mailboxes of the given size.
// Non-positive sizes use DefaultMailboxSize.
func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	return &Dispatcher{size: size, mailboxes: make(map[int64]*mailbox)}
}

// Do runs fn on the user's worker after every earlier job for that user and
// waits for its result. If ctx ends first Do returns ctx.Err(); a job whose
// context is already done when its turn comes is skipped.
func (d *Dispatcher) Do(ctx context.Context, userID int64, fn func(context.Context) error) error {
	done, err := d.enqueue(ctx, userID, fn)
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues fn behind the user's earlier jobs and returns without
// waiting. Jobs submitted from one goroutine run in submission order.
func (d *Dispatcher) Submit(ctx context.Context, userID int64, fn func(context.Context) error) error {
	_, err := d.enqueue(ctx, userID, fn)
	return err
}

func (d *Dispatcher) enqueue(ctx context.Context, userID int64, fn func(context.Context) error) (<-chan error, error) {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	mb, ok := d.mailboxes[userID]
	if !ok {
		mb = &mailbox{jobs: make(chan job, d.size)}
		d.mailboxes[userID] = mb
		d.wg.Add(1)
		metrics.MailboxesActive.Inc()
		go d.run(userID, mb)
	}
	select {
	case mb.jobs <- j:
		mb.pending++
		return j.done, nil
	default:
		return nil, ErrBusy
	}
}

func (d *Dispatcher) run(userID int64, mb *mailbox) {
	defer d.wg.Done()
	defer metrics.MailboxesActive.Dec()

	for j := range mb.jobs {
		j.done <- execute(userID, j)

		d.mu.Lock()
		mb.pending--
		if mb.pending == 0 {
			delete(d.mailboxes, userID)
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

func execute(userID int64, j job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Int64("user_id", userID).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Turn handler panicked")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return j.fn(j.ctx)
}

// Active returns the number of users with a running worker.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}

// Close rejects new work and waits for queued jobs to finish or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
