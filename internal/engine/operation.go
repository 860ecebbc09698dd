package engine

import (
	"sync"

	"github.com/fenilsonani/cache-cleaner/internal/progress"
)

// Operation is a running scan or clean. Progress arrives on Events, which is
// closed before Done is, so a receiver that drains Events has seen every
// event by the time the result is available.
type Operation[T any] struct {
	events chan progress.Event
	done   chan struct{}

	mu        sync.Mutex
	result    T
	completed bool
	callbacks []func(T)
}

func newOperation[T any](categories int) *Operation[T] {
	return &Operation[T]{
		// one event per category, so the sender never blocks
		events: make(chan progress.Event, categories),
		done:   make(chan struct{}),
	}
}

// Events returns the per-category progress stream.
func (o *Operation[T]) Events() <-chan progress.Event {
	return o.events
}

// Done is closed once the result is available.
func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation finishes and returns its result.
func (o *Operation[T]) Wait() T {
	<-o.done
	return o.Result()
}

// Result returns the final result. It is the zero value until Done is closed.
func (o *Operation[T]) Result() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// OnComplete registers fn to run with the result. If the operation has
// already finished, fn runs immediately on the calling goroutine.
func (o *Operation[T]) OnComplete(fn func(T)) {
	o.mu.Lock()
	if o.completed {
		result := o.result
		o.mu.Unlock()
		fn(result)
		return
	}
	o.callbacks = append(o.callbacks, fn)
	o.mu.Unlock()
}

func (o *Operation[T]) emit(ev progress.Event) {
	o.events <- ev
}

// complete publishes the result exactly once.
func (o *Operation[T]) complete(result T) {
	close(o.events)

	o.mu.Lock()
	o.result = result
	o.completed = true
	callbacks := o.callbacks
	o.callbacks = nil
	o.mu.Unlock()

	close(o.done)
	for _, fn := range callbacks {
		fn(result)
	}
}
