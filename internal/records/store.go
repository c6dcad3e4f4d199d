// Package records persists the escape log so leaderboards survive restarts.
package records

import (
	"context"
	"errors"

	"github.com/pixil98/go-mudmaze/internal/game"
)

var ErrClosed = errors.New("record store is closed")

// Store is an append-only escape log. Load returns records in append order.
type Store interface {
	Load(ctx context.Context) ([]game.EscapeRecord, error)
	Append(ctx context.Context, rec game.EscapeRecord) error
	Close() error
}
