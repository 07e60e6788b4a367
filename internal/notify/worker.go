package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull = errors.New("notify: event queue full")
	ErrStopped   = errors.New("notify: worker stopped")
)

type Worker struct {
	eventCh chan Event
	sink    Sink
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

func NewWorker(sink Sink, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		eventCh: make(chan Event, bufferSize),
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *Worker) Start() {
	w.wg.Go(func() {
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("draining events before shutdown", "remaining_events", len(w.eventCh))

				for len(w.eventCh) > 0 {
					w.deliver(context.Background(), <-w.eventCh)
				}

				return
			case e := <-w.eventCh:
				w.deliver(w.ctx, e)
			}
		}
	})
}

func (w *Worker) deliver(ctx context.Context, e Event) {
	if err := w.sink.Deliver(ctx, e); err != nil {
		slog.Error("failed to deliver event", "error", err, "topic", e.Topic, "event_id", e.ID)
	}
}

// Enqueue never blocks. A full queue drops the event.
func (w *Worker) Enqueue(e Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrStopped
	}

	select {
	case w.eventCh <- e:
		return nil
	default:
		slog.Warn("event channel full, dropping event", "topic", e.Topic)
		return ErrQueueFull
	}
}

// Publish satisfies ledger.Publisher.
func (w *Worker) Publish(_ context.Context, topic string, payload any) error {
	return w.Enqueue(NewEvent(WithTopic(topic), WithData(payload)))
}

// Shutdown stops accepting events and waits for the queue to drain.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}
