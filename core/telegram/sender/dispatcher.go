// Package sender delivers outbound Telegram calls off the handler goroutine.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/familybudget/core/logger"
	"github.com/m3rciful/familybudget/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs of one chat always land in the same lane, so replies to a chat keep
// the order in which they were enqueued.
type Dispatcher struct {
	opts  Options
	lanes []chan job
	mu    sync.RWMutex
	done  bool
	wg    sync.WaitGroup
	errs  atomic.Uint64
	sent  atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	laneSize := opts.QueueSize / opts.Workers
	if laneSize < 1 {
		laneSize = 1
	}

	d := &Dispatcher{
		opts:  opts,
		lanes: make([]chan job, opts.Workers),
	}
	d.wg.Add(opts.Workers)
	for i := range d.lanes {
		d.lanes[i] = make(chan job, laneSize)
		go d.worker(d.lanes[i])
	}
	return d
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.done {
		return ErrQueueClosed
	}

	j := job{
		ctx:      ctx,
		action:   action,
		endpoint: endpoint,
		run:      run,
	}
	select {
	case d.lanes[d.laneFor(ctx)] <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) laneFor(ctx context.Context) int {
	id := logger.ChatIDFrom(ctx)
	if id < 0 {
		id = -id
	}
	return int(id % int64(len(d.lanes)))
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// SentCount returns the number of jobs that eventually succeeded.
func (d *Dispatcher) SentCount() uint64 {
	return d.sent.Load()
}

// Close stops accepting jobs and waits for workers to drain queued ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	for _, lane := range d.lanes {
		close(lane)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(lane <-chan job) {
	defer d.wg.Done()
	for j := range lane {
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", sendLogAttrs(j)...)

	var lastErr error
	attempts := d.opts.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadlineCtx.Err(); err != nil {
			lastErr = err
			break
		}

		err := j.run()
		if err == nil {
			d.sent.Add(1)
			logSendSuccess(ctx, j, attempt, time.Since(start))
			return
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = deadlineCtx.Err()
		case <-timer.C:
			logger.Debug(ctx, "tg.sender", "send.retry.backoff",
				append(sendLogAttrs(j),
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
				)...,
			)
			continue
		}
		break
	}

	d.errs.Add(1)
	logSendFailure(ctx, j, lastErr, attempts, time.Since(start))
}

func sendLogAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("op", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func logSendSuccess(ctx context.Context, j job, attempt int, elapsed time.Duration) {
	attrs := append(sendLogAttrs(j), slog.String("status", "ok"), slog.Duration("duration", elapsed))
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempts", attempt))
		logger.Info(ctx, "tg.sender", "send.retry.success", attrs...)
		return
	}
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func logSendFailure(ctx context.Context, j job, err error, attempts int, elapsed time.Duration) {
	attrs := append(sendLogAttrs(j),
		slog.String("status", "fail"),
		slog.String("err", netutil.Redact(err)),
		slog.String("error_kind", netutil.Classify(err)),
		slog.Duration("duration", elapsed),
		slog.Int("attempts", attempts),
	)
	logger.Error(ctx, "tg.sender", "send.fail", attrs...)
}
