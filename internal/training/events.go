package training

import (
	"sync"

	"github.com/verte-zerg/tuivocab/internal/model"
)

// Observer reacts to session events. Callbacks run on timer goroutines and
// must not block for long.
type Observer interface {
	OnBatchReady(batch model.Batch)
	OnElapsedTick(elapsed int)
}

// EventType defines the type of session event.
type EventType string

const (
	EventBatchReady  EventType = "batch_ready"
	EventElapsedTick EventType = "elapsed_tick"
)

// Event is a session update delivered through Subscribe.
type Event struct {
	Type    EventType
	Batch   model.Batch
	Elapsed int
}

// chanObserver forwards events to a buffered channel. Batches wait for room
// until the observer is closed; elapsed ticks are dropped when the buffer is full.
type chanObserver struct {
	mu     sync.RWMutex
	ch     chan Event
	done   chan struct{}
	once   sync.Once
	closed bool
}

func newChanObserver(buffer int) *chanObserver {
	if buffer <= 0 {
		buffer = 1
	}
	return &chanObserver{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

func (o *chanObserver) OnBatchReady(batch model.Batch) {
	o.send(Event{Type: EventBatchReady, Batch: batch}, true)
}

func (o *chanObserver) OnElapsedTick(elapsed int) {
	o.send(Event{Type: EventElapsedTick, Elapsed: elapsed}, false)
}

func (o *chanObserver) send(event Event, wait bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return
	}
	if wait {
		select {
		case o.ch <- event:
		case <-o.done:
		}
		return
	}
	select {
	case o.ch <- event:
	default:
	}
}

func (o *chanObserver) close() {
	o.once.Do(func() {
		close(o.done)
		o.mu.Lock()
		o.closed = true
		close(o.ch)
		o.mu.Unlock()
	})
}
