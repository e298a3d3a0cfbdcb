package providers

import (
	"context"

	"github.com/gammazero/channelqueue"
)

// serializer is a single-worker FIFO task queue. Every unit of work admitted
// through submit runs to completion, in submission order, before the next
// unit starts - including any backend I/O the unit performs. This makes the
// scan-update-write sequence of a mutation, and the scan-delete sequence of
// a sweep, atomic with respect to every other admitted unit, with no lock
// bookkeeping beyond the queue itself.
//
// The queue is unbounded (backed by channelqueue) so a submitter is never
// blocked behind queue capacity, only behind whatever unit is currently
// running.
type serializer struct {
	queue *channelqueue.ChannelQueue[job]
}

type job struct {
	fn   func() error
	done chan error
}

func newSerializer() *serializer {
	s := &serializer{queue: channelqueue.New[job](-1)}
	go s.run()
	return s
}

func (s *serializer) run() {
	for j := range s.queue.Out() {
		j.done <- j.fn()
	}
}

// submit admits fn and blocks until it has run, returning its error. If ctx
// is canceled before fn is admitted or before it completes, submit returns
// ctx.Err() without canceling fn itself - an already-admitted unit always
// runs to completion.
func (s *serializer) submit(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case s.queue.In() <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
