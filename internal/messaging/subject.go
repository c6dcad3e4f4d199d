package messaging

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// PlayerSubject is the private channel of a player.
func PlayerSubject(userID string) string {
	return fmt.Sprintf("player.%s", userID)
}

// Publisher sends raw messages to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subscriber receives raw messages from a subject.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// IsTransient reports whether a failed publish is worth retrying.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotStarted),
		errors.Is(err, nats.ErrConnectionReconnecting),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrSlowConsumer),
		errors.Is(err, nats.ErrNoServers):
		return true
	default:
		return false
	}
}
