package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pixil98/go-mudmaze/internal/chatfilter"
	"github.com/pixil98/go-mudmaze/internal/commands"
	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/pixil98/go-mudmaze/internal/logging"
	"github.com/pixil98/go-mudmaze/internal/messaging"
)

const (
	minNameLength = 3
	maxNameLength = 16
	prompt        = "> "

	// settleQuiet is how long a session leaving the maze waits for another
	// notification before moving on; settleTimeout caps the whole wait.
	settleQuiet   = 100 * time.Millisecond
	settleTimeout = 2 * time.Second
)

// Handler is the game surface a session drives.
type Handler interface {
	Join(ctx context.Context, u game.User) error
	Exec(ctx context.Context, userID string, line string) error
	Disconnect(ctx context.Context, userID string) error
	State(userID string) commands.SessionState
}

// Outbox is the asynchronous delivery path of player notifications.
type Outbox interface {
	Flush(ctx context.Context, userID string) error
	Forget(userID string)
}

// Manager runs player sessions over arbitrary line-oriented connections.
type Manager struct {
	handler  Handler
	sub      messaging.Subscriber
	filter   *chatfilter.ChatFilter
	outbox   Outbox
	greeting string

	mu     sync.Mutex
	active map[string]string
}

type ManagerOpt func(*Manager)

// WithNameFilter rejects usernames the filter does not allow.
func WithNameFilter(f *chatfilter.ChatFilter) ManagerOpt {
	return func(m *Manager) {
		m.filter = f
	}
}

// WithOutbox lets sessions wait for queued notifications before leaving the
// maze and release the player's mailbox when they end.
func WithOutbox(o Outbox) ManagerOpt {
	return func(m *Manager) {
		m.outbox = o
	}
}

// WithGreeting sets the text shown before the name prompt.
func WithGreeting(s string) ManagerOpt {
	return func(m *Manager) {
		m.greeting = s
	}
}

func NewManager(h Handler, sub messaging.Subscriber, opts ...ManagerOpt) *Manager {
	m := &Manager{
		handler: h,
		sub:     sub,
		active:  map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RunSession asks for a name, then plays until the player quits, declines to
// re-enter after an escape, or the connection closes.
func (m *Manager) RunSession(ctx context.Context, rw io.ReadWriter) error {
	c := newConn(rw)
	defer c.close()

	sessionID := uuid.NewString()
	ctx = logging.With(withSession(ctx, sessionID), slog.String("session", sessionID))

	if m.greeting != "" {
		if err := c.writeLine(m.greeting); err != nil {
			return err
		}
	}

	user, err := m.claimName(ctx, c, sessionID)
	if err != nil {
		return ignoreEOF(err)
	}
	defer m.release(user.ID, sessionID)
	ctx = logging.With(ctx, slog.String("player", user.ID))

	unsub, err := m.sub.Subscribe(messaging.PlayerSubject(user.ID), c.deliver)
	if err != nil {
		return fmt.Errorf("subscribing session %s: %w", sessionID, err)
	}
	defer unsub()
	if m.outbox != nil {
		defer m.outbox.Forget(user.ID)
	}

	slog.InfoContext(ctx, "session started")

	for {
		if err := m.handler.Join(ctx, user); err != nil {
			return fmt.Errorf("joining %s: %w", user.ID, err)
		}

		quit, err := m.play(ctx, c, user.ID)
		if err != nil {
			if dErr := m.handler.Disconnect(context.WithoutCancel(ctx), user.ID); dErr != nil {
				slog.ErrorContext(ctx, "disconnecting player", "error", dErr)
			}
			return ignoreEOF(err)
		}
		if err := m.settle(ctx, c, user.ID); err != nil {
			return ignoreEOF(err)
		}
		if quit {
			return c.writeLine("Goodbye!")
		}

		again, err := c.askYN(ctx, "Enter the maze again? (y/n) ")
		if err != nil {
			return ignoreEOF(err)
		}
		if !again {
			return c.writeLine("Goodbye!")
		}
	}
}

// claimName prompts until the player picks a valid name nobody else is using.
func (m *Manager) claimName(ctx context.Context, c *conn, sessionID string) (game.User, error) {
	for {
		name, err := c.ask(ctx, "By what name do you wish to be known? ", m.validName)
		if err != nil {
			return game.User{}, err
		}

		id := strings.ToLower(name)
		m.mu.Lock()
		_, taken := m.active[id]
		if !taken {
			m.active[id] = sessionID
		}
		m.mu.Unlock()

		if taken {
			if err := c.writeLine(fmt.Sprintf("%s is already in the maze.", name)); err != nil {
				return game.User{}, err
			}
			continue
		}
		return game.User{ID: id, Username: name}, nil
	}
}

func (m *Manager) release(userID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[userID] == sessionID {
		delete(m.active, userID)
	}
}

func (m *Manager) validName(name string) (bool, string) {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return false, fmt.Sprintf("Names are %d to %d letters or digits.", minNameLength, maxNameLength)
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false, "Invalid name, please try another."
		}
	}
	if ok, why := m.filter.AllowName(name); !ok {
		return false, why
	}
	return true, ""
}

// play feeds input lines to the handler until the player leaves the maze.
// It reports whether they quit rather than escaped.
func (m *Manager) play(ctx context.Context, c *conn, userID string) (bool, error) {
	if err := c.write(prompt); err != nil {
		return false, err
	}

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case msg := <-c.msgs:
			if err := c.write("\n" + msg + "\n" + prompt); err != nil {
				return false, err
			}

		case line, ok := <-c.lines:
			if !ok {
				return false, io.EOF
			}

			err := m.handler.Exec(ctx, userID, line)
			if err != nil && !errors.Is(err, game.ErrNotPlaying) {
				slog.ErrorContext(ctx, "executing command", "error", err)
			}

			st := m.handler.State(userID)
			switch {
			case st.Quit:
				return true, nil
			case !st.Online:
				return false, nil
			}

			if err := c.write(prompt); err != nil {
				return false, err
			}
		}
	}
}

// settle shows the notifications still on their way to a player who just
// left the maze, such as the farewell or the escape banner.
func (m *Manager) settle(ctx context.Context, c *conn, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	if m.outbox != nil {
		if err := m.outbox.Flush(ctx, userID); err != nil {
			slog.WarnContext(ctx, "flushing notifications", "error", err)
		}
	}

	quiet := time.NewTimer(settleQuiet)
	defer quiet.Stop()
	for {
		select {
		case msg := <-c.msgs:
			if err := c.writeLine(msg); err != nil {
				return err
			}
			quiet.Reset(settleQuiet)
		case <-quiet.C:
			return nil
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}
			return ctx.Err()
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type sessionKey struct{}

func withSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// ID returns the session id carried by ctx, if any.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok
}
