package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/game"
)

type GameConfig struct {
	Admins      []string `json:"admins"`
	AwayTimeout string   `json:"away_timeout"`
	Seed        *uint64  `json:"seed,omitempty"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.AwayTimeout != "" {
		d, err := time.ParseDuration(c.AwayTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing away_timeout: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("away_timeout must be positive"))
		}
	}
	for i, a := range c.Admins {
		if a == "" {
			el.Add(fmt.Errorf("admin %d is empty", i))
		}
	}

	return el.Err()
}

func (c *GameConfig) worldOpts() ([]game.WorldOpt, error) {
	opts := []game.WorldOpt{game.WithAdmins(c.Admins...)}

	if c.AwayTimeout != "" {
		d, err := time.ParseDuration(c.AwayTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing away_timeout: %w", err)
		}
		opts = append(opts, game.WithAwayTimeout(d))
	}
	if c.Seed != nil {
		opts = append(opts, game.WithRand(game.NewRand(*c.Seed)))
	}

	return opts, nil
}
