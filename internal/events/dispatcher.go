package events

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultBufferSize    = 100
	defaultBatchSize     = 10
	defaultFlushInterval = time.Second
	publishTimeout       = 5 * time.Second
)

// Emitter accepts booking events without blocking the caller.
type Emitter interface {
	Emit(ev BookingEvent)
}

// Dispatcher buffers events and hands them to a Publisher in batches from a
// single background worker. Failed batches are logged and dropped.
type Dispatcher struct {
	publisher     Publisher
	events        chan BookingEvent
	batchSize     int
	flushInterval time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

var _ Emitter = (*Dispatcher)(nil)

// NewDispatcher starts the background worker.
func NewDispatcher(publisher Publisher) *Dispatcher {
	d := &Dispatcher{
		publisher:     publisher,
		events:        make(chan BookingEvent, defaultBufferSize),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		done:          make(chan struct{}),
	}
	go d.worker()
	return d
}

// Emit queues an event. When the buffer is full the event is published synchronously.
func (d *Dispatcher) Emit(ev BookingEvent) {
	select {
	case d.events <- ev:
	default:
		d.flush([]BookingEvent{ev})
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	batch := make([]BookingEvent, 0, d.batchSize)
	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-d.events:
			if !ok {
				if len(batch) > 0 {
					d.flush(batch)
				}
				return
			}
			batch = append(batch, ev)
			if len(batch) >= d.batchSize {
				d.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (d *Dispatcher) flush(batch []BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, batch); err != nil {
		log.Printf("publish %d booking events: %v", len(batch), err)
	}
}

// Close drains queued events and waits for the worker to stop.
// Emit must not be called after Close.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.events) })
	select {
	case <-d.done:
		return d.publisher.Close()
	case <-ctx.Done():
		return ctx.Err()
	}
}
