package records

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultQueueSize   = 64
	DefaultMaxAttempts = 5
	defaultRetryBase   = 100 * time.Millisecond
)

// Writer appends escape records to a Store off the game loop. Record never
// blocks; records that don't fit in the queue are dropped and logged.
type Writer struct {
	store   Store
	queue   chan game.EscapeRecord
	backoff func() retry.Backoff
}

type WriterOpt func(*Writer)

// WithQueueSize sets how many records may wait to be written.
func WithQueueSize(n int) WriterOpt {
	return func(w *Writer) {
		w.queue = make(chan game.EscapeRecord, n)
	}
}

// WithRetryBackoff replaces the backoff used between failed appends.
func WithRetryBackoff(f func() retry.Backoff) WriterOpt {
	return func(w *Writer) {
		w.backoff = f
	}
}

func NewWriter(store Store, opts ...WriterOpt) *Writer {
	w := &Writer{
		store: store,
		queue: make(chan game.EscapeRecord, DefaultQueueSize),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(DefaultMaxAttempts-1, retry.NewExponential(defaultRetryBase))
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) Record(rec game.EscapeRecord) {
	select {
	case w.queue <- rec:
	default:
		slog.Error("escape record queue full, dropping record", "id", rec.ID, "player", rec.UserID)
	}
}

// Start writes queued records until ctx is done, then flushes what is left
// and closes the store.
func (w *Writer) Start(ctx context.Context) error {
	defer func() {
		if err := w.store.Close(); err != nil {
			slog.Error("closing record store", "error", err)
		}
	}()

	for {
		select {
		case rec := <-w.queue:
			w.write(ctx, rec)
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (w *Writer) flush(ctx context.Context) {
	for {
		select {
		case rec := <-w.queue:
			w.write(ctx, rec)
		default:
			return
		}
	}
}

func (w *Writer) write(ctx context.Context, rec game.EscapeRecord) {
	err := retry.Do(ctx, w.backoff(), func(ctx context.Context) error {
		if err := w.store.Append(ctx, rec); err != nil {
			slog.WarnContext(ctx, "appending escape record", "id", rec.ID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "escape record lost", "id", rec.ID, "player", rec.UserID, "error", err)
	}
}
