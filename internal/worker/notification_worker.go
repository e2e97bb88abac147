package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/mail"
	"github.com/spec-kit/municipal-helpdesk/internal/observability"
)

// ErrStopped is returned by Submit after Stop was called.
var ErrStopped = errors.New("notification worker stopped")

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("notification queue full")

// Job is one email delivery.
type Job struct {
	EventID string
	Folio   string
	Message mail.Message
}

// Config sizes the worker pool.
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// NotificationWorker delivers queued emails on a fixed pool of goroutines. Each job is
// attempted once; failures are logged and counted.
type NotificationWorker struct {
	cfg     Config
	mailer  mail.Mailer
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	queue   chan Job
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewNotificationWorker builds a worker. Call Start before submitting jobs.
func NewNotificationWorker(cfg Config, mailer mail.Mailer, logger *zap.Logger, metrics *observability.Metrics) *NotificationWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		cfg:     cfg,
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan Job, cfg.QueueSize),
	}
}

// Start launches the pool. Workers exit once ctx is cancelled or Stop drains the queue.
func (w *NotificationWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	w.logger.Info("notification worker started", zap.Int("workers", w.cfg.Workers), zap.Int("queue_size", w.cfg.QueueSize))
}

// Submit enqueues a job without blocking.
func (w *NotificationWorker) Submit(job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- job:
		return nil
	default:
		w.metrics.RecordNotification("dropped")
		w.logger.Warn("notification dropped, queue full",
			zap.String("event_id", job.EventID),
			zap.String("folio", job.Folio))
		return ErrQueueFull
	}
}

// Stop refuses new jobs, lets the pool drain what is queued and waits for it.
// ctx bounds the wait; on expiry in-flight sends are cancelled.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if w.cancel != nil {
			w.cancel()
		}
		return nil
	case <-ctx.Done():
		if w.cancel != nil {
			w.cancel()
		}
		return ctx.Err()
	}
}

func (w *NotificationWorker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.deliver(ctx, id, job)
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, workerID int, job Job) {
	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	err := w.mailer.Send(sendCtx, job.Message)
	if err != nil {
		w.metrics.RecordNotification("failed")
		w.logger.Error("notification send failed",
			zap.Int("worker", workerID),
			zap.String("event_id", job.EventID),
			zap.String("folio", job.Folio),
			zap.String("to", job.Message.To),
			zap.Error(err))
		return
	}
	w.metrics.RecordNotification("sent")
	w.logger.Info("notification sent",
		zap.Int("worker", workerID),
		zap.String("folio", job.Folio),
		zap.String("to", job.Message.To),
		zap.Duration("latency", time.Since(start)))
}
