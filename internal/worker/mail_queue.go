package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/mail"
)

// ErrQueueFull is returned by Send when the buffer has no room.
var ErrQueueFull = errors.New("mail queue is full")

// ErrQueueClosed is returned by Send after Stop.
var ErrQueueClosed = errors.New("mail queue is closed")

// MailQueue hands messages to a pool of goroutines so request handlers never wait on delivery.
type MailQueue struct {
	next    mail.Mailer
	workers int
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	jobs    chan mail.Message
	wg      sync.WaitGroup
}

// NewMailQueue wraps next. workers and buffer fall back to 1 and 64.
func NewMailQueue(next mail.Mailer, workers, buffer int, logger *zap.Logger) *MailQueue {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailQueue{
		next:    next,
		workers: workers,
		logger:  logger,
		jobs:    make(chan mail.Message, buffer),
	}
}

// Send enqueues msg. It never blocks.
func (q *MailQueue) Send(_ context.Context, msg mail.Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers. Delivery uses ctx; cancelling it does not drop queued messages,
// they are still handed to the mailer until Stop drains the queue.
func (q *MailQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	ctx = context.WithoutCancel(ctx)
	for w := 0; w < q.workers; w++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for msg := range q.jobs {
				if err := q.next.Send(ctx, msg); err != nil {
					q.logger.Error("mail delivery failed",
						zap.Int("worker", id),
						zap.String("to", msg.To),
						zap.String("subject", msg.Subject),
						zap.Error(err))
				}
			}
		}(w)
	}
	q.logger.Info("mail queue started", zap.Int("workers", q.workers))
}

// Stop rejects new messages and waits until the queued ones are delivered.
func (q *MailQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	started := q.started
	q.mu.Unlock()

	if !started {
		return
	}
	q.wg.Wait()
	q.logger.Info("mail queue drained")
}
