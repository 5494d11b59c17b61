// Package worker provides the background execution model: one serial
// queue per logical screen, each running a single task at a time in
// submission order, with completion posted back on a per-task channel.
// Tasks are never cancelled or retried once submitted.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	applog "budget/internal/log"
)

var ErrQueueClosed = errors.New("queue closed")

// Task is a unit of background work. It receives the queue's base
// context and reports a single success or failure.
type Task func(ctx context.Context) error

// Queue executes tasks strictly one at a time, in submission order.
type Queue struct {
	name  string
	tasks chan queued

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	run  Task
	done chan<- error
}

// Submit enqueues a task and returns the channel its result will be
// delivered on. Submit blocks only while the queue's buffer is full;
// a closed queue reports ErrQueueClosed immediately.
func (q *Queue) Submit(task Task) <-chan error {
	done := make(chan error, 1)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		done <- ErrQueueClosed
		return done
	}
	q.tasks <- queued{run: task, done: done}
	return done
}

// Do submits a task and waits for its completion.
func (q *Queue) Do(task Task) error {
	return <-q.Submit(task)
}

func (q *Queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}

// Group owns the set of named queues and their goroutines. Shutdown
// lets every queue drain what was already submitted before returning.
type Group struct {
	eg      *errgroup.Group
	baseCtx context.Context

	mu     sync.Mutex
	queues map[string]*Queue
}

func NewGroup(ctx context.Context) *Group {
	eg, baseCtx := errgroup.WithContext(ctx)
	return &Group{
		eg:      eg,
		baseCtx: baseCtx,
		queues:  make(map[string]*Queue),
	}
}

// Queue returns the serial queue with the given name, starting it on
// first use. One queue per screen keeps that screen's writes ordered;
// queues are not ordered against each other.
func (g *Group) Queue(name string) *Queue {
	g.mu.Lock()
	defer g.mu.Unlock()

	if q, ok := g.queues[name]; ok {
		return q
	}

	q := &Queue{name: name, tasks: make(chan queued, 16)}
	g.queues[name] = q

	g.eg.Go(func() error {
		for t := range q.tasks {
			err := t.run(g.baseCtx)
			if err != nil {
				slog.Warn("Queue task failed", applog.FieldQueue, q.name, applog.FieldError, err)
			}
			t.done <- err
		}
		return nil
	})
	return q
}

// Shutdown closes every queue and waits for in-flight and already
// queued tasks to finish.
func (g *Group) Shutdown() error {
	g.mu.Lock()
	for _, q := range g.queues {
		q.close()
	}
	g.mu.Unlock()
	return g.eg.Wait()
}
