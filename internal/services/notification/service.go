package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWorkers        = 4
	DefaultBuffer         = 1024
	DefaultPublishTimeout = 5 * time.Second
)

// Dispatcher delivers events asynchronously on a fixed worker pool. Notify
// never blocks: when the buffer is full the event is dropped and logged.
// Delivery failures are logged and not retried.
type Dispatcher struct {
	publisher Publisher
	queue     chan Event
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines draining a queue of buffer events.
func NewDispatcher(publisher Publisher, workers, buffer int) *Dispatcher {
	if publisher == nil {
		panic("publisher is required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	d := &Dispatcher{
		publisher: publisher,
		queue:     make(chan Event, buffer),
		timeout:   DefaultPublishTimeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.run()
	}
	return d
}

func (d *Dispatcher) Notify(events ...Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	for _, ev := range events {
		select {
		case d.queue <- ev:
		default:
			logrus.WithFields(logrus.Fields{
				"event":   ev.Type,
				"user_id": ev.UserID,
			}).Warn("notification queue full, dropping event")
		}
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("event", ev.Type).Errorf("notification publisher panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.publisher.Publish(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"event":    ev.Type,
			"event_id": ev.ID,
			"user_id":  ev.UserID,
		}).WithError(err).Warn("failed to publish notification")
	}
}

// Close stops accepting events, drains the queue and closes the publisher.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	return d.publisher.Close()
}
