package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultRetryBase = 50 * time.Millisecond
	DefaultRetryCap  = 5 * time.Second
)

// DeliveryObserver is told how each notification ended.
type DeliveryObserver interface {
	Delivered()
	Retried()
	Dropped()
}

type noopDeliveryObserver struct{}

func (noopDeliveryObserver) Delivered() {}
func (noopDeliveryObserver) Retried()   {}
func (noopDeliveryObserver) Dropped()   {}

// Relay delivers player notifications without blocking the caller. Each
// recipient has a FIFO mailbox drained by its own goroutine, so messages to
// one player arrive in order and a stuck recipient never holds up another.
// Transient publish failures are retried with capped exponential backoff
// until they succeed or the relay stops; permanent ones are logged and dropped.
// Mailboxes live until Forget is called for their recipient.
type Relay struct {
	pub      Publisher
	observer DeliveryObserver
	backoff  func() retry.Backoff

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	boxes  map[string]*mailbox
	closed bool
}

type RelayOpt func(*Relay)

func WithDeliveryObserver(o DeliveryObserver) RelayOpt {
	return func(r *Relay) {
		r.observer = o
	}
}

// WithBackoff sets the factory for the per-message retry schedule.
func WithBackoff(f func() retry.Backoff) RelayOpt {
	return func(r *Relay) {
		r.backoff = f
	}
}

func NewRelay(pub Publisher, opts ...RelayOpt) *Relay {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Relay{
		pub:      pub,
		observer: noopDeliveryObserver{},
		backoff: func() retry.Backoff {
			return retry.WithCappedDuration(DefaultRetryCap, retry.NewExponential(DefaultRetryBase))
		},
		ctx:    ctx,
		cancel: cancel,
		boxes:  make(map[string]*mailbox),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Notify queues msg for userID. It never blocks on delivery.
func (r *Relay) Notify(userID string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.observer.Dropped()
		return
	}

	box, ok := r.boxes[userID]
	if !ok {
		box = newMailbox()
		r.boxes[userID] = box
		r.wg.Add(1)
		go r.drain(userID, box)
	}
	box.push(msg)
}

// Flush waits until every notification queued for userID has been handed to
// the publisher or dropped.
func (r *Relay) Flush(ctx context.Context, userID string) error {
	r.mu.Lock()
	box, ok := r.boxes[userID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	idle := box.idle()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// Forget retires the mailbox of userID once its queue is delivered. A later
// Notify for the same recipient starts a new one.
func (r *Relay) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	box, ok := r.boxes[userID]
	if !ok {
		return
	}
	delete(r.boxes, userID)
	close(box.retire)
}

// Start runs until ctx is cancelled, then stops every mailbox. Messages still
// queued at that point are dropped.
func (r *Relay) Start(ctx context.Context) error {
	<-ctx.Done()
	r.Stop()
	return nil
}

// Stop cancels pending deliveries and waits for the mailbox goroutines.
func (r *Relay) Stop() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Relay) drain(userID string, box *mailbox) {
	defer r.wg.Done()
	subject := PlayerSubject(userID)

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-box.retire:
			r.deliverAll(subject, box)
			return
		case <-box.wake:
			r.deliverAll(subject, box)
		}
	}
}

func (r *Relay) deliverAll(subject string, box *mailbox) {
	for {
		msg, ok := box.pop()
		if !ok {
			return
		}
		r.deliver(subject, msg)
	}
}

func (r *Relay) deliver(subject string, msg string) {
	attempt := 0
	err := retry.Do(r.ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			r.observer.Retried()
		}

		err := r.pub.Publish(subject, []byte(msg))
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	if err != nil {
		slog.Warn("dropping notification", "subject", subject, "attempts", attempt, "error", err)
		r.observer.Dropped()
		return
	}
	r.observer.Delivered()
}

type mailbox struct {
	mu      sync.Mutex
	queue   []string
	busy    bool
	waiters []chan struct{}

	wake   chan struct{}
	retire chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		wake:   make(chan struct{}, 1),
		retire: make(chan struct{}),
	}
}

func (b *mailbox) push(msg string) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// pop takes the next message. The mailbox counts as busy until pop finds the
// queue empty, so the message being delivered keeps Flush waiting.
func (b *mailbox) pop() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		b.busy = false
		for _, w := range b.waiters {
			close(w)
		}
		b.waiters = nil
		return "", false
	}
	b.busy = true
	msg := b.queue[0]
	b.queue = b.queue[1:]
	return msg, true
}

// idle returns a channel closed when the mailbox next runs dry, or nil when
// it already is.
func (b *mailbox) idle() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 && !b.busy {
		return nil
	}
	w := make(chan struct{})
	b.waiters = append(b.waiters, w)
	return w
}
