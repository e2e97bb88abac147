package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/mail"
	"github.com/spec-kit/municipal-helpdesk/internal/observability"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  []mail.Message
	fail  bool
	block chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("provider down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNotificationWorkerDelivers(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mailer := &recordingMailer{}
	w := NewNotificationWorker(Config{Workers: 2, QueueSize: 4, SendTimeout: time.Second}, mailer, zap.NewNop(), metrics)
	w.Start(context.Background())

	require.NoError(t, w.Submit(Job{Folio: "TK0001", Message: mail.Message{To: "a@x.com"}}))
	require.NoError(t, w.Submit(Job{Folio: "TK0002", Message: mail.Message{To: "b@x.com"}}))

	assert.Eventually(t, func() bool { return mailer.count() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("sent")))
}

func TestNotificationWorkerCountsFailuresWithoutRetry(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mailer := &recordingMailer{fail: true}
	w := NewNotificationWorker(Config{Workers: 1, QueueSize: 1}, mailer, zap.NewNop(), metrics)
	w.Start(context.Background())

	require.NoError(t, w.Submit(Job{Folio: "TK0003", Message: mail.Message{To: "a@x.com"}}))
	require.NoError(t, w.Stop(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed")))
	assert.Equal(t, 0, mailer.count())
}

func TestNotificationWorkerDropsWhenFull(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mailer := &recordingMailer{block: make(chan struct{})}
	w := NewNotificationWorker(Config{Workers: 1, QueueSize: 1, SendTimeout: 5 * time.Second}, mailer, zap.NewNop(), metrics)

	// Not started: the single slot fills and the next submit is dropped.
	require.NoError(t, w.Submit(Job{Folio: "TK0004"}))
	assert.ErrorIs(t, w.Submit(Job{Folio: "TK0005"}), ErrQueueFull)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("dropped")))

	w.Start(context.Background())
	close(mailer.block)
	require.NoError(t, w.Stop(context.Background()))
}

func TestNotificationWorkerRejectsAfterStop(t *testing.T) {
	w := NewNotificationWorker(Config{}, &recordingMailer{}, nil, nil)
	w.Start(context.Background())
	require.NoError(t, w.Stop(context.Background()))

	assert.ErrorIs(t, w.Submit(Job{Folio: "TK0006"}), ErrStopped)
}

func TestNotificationWorkerAppliesSendTimeout(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mailer := &recordingMailer{block: make(chan struct{})}
	w := NewNotificationWorker(Config{Workers: 1, QueueSize: 1, SendTimeout: 20 * time.Millisecond}, mailer, zap.NewNop(), metrics)
	w.Start(context.Background())

	require.NoError(t, w.Submit(Job{Folio: "TK0007", Message: mail.Message{To: "slow@x.com"}}))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed")) == 1
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))
}
