package listener

import (
	"context"
	"io"
	"log/slog"
)

// SessionRunner plays one session over a connection until it ends.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

// ConnectionObserver is told when connections open and close, by transport.
type ConnectionObserver interface {
	Connected(transport string)
	Disconnected(transport string)
}

type noopObserver struct{}

func (noopObserver) Connected(string)    {}
func (noopObserver) Disconnected(string) {}

type ConnectionManager struct {
	sessions SessionRunner
	observer ConnectionObserver
}

type ConnectionManagerOpt func(*ConnectionManager)

func WithConnectionObserver(o ConnectionObserver) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.observer = o
	}
}

func NewConnectionManager(sessions SessionRunner, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		sessions: sessions,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AcceptConnection runs a session on conn and returns when it ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, transport string, conn io.ReadWriter) {
	m.observer.Connected(transport)
	defer m.observer.Disconnected(transport)

	if err := m.sessions.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "transport", transport, "error", err)
	}
}
