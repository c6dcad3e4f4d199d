package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/logging"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Nats         NatsConfig       `json:"nats"`
	Maze         MazeConfig       `json:"maze"`
	Game         GameConfig       `json:"game"`
	Records      RecordsConfig    `json:"records"`
	Logging      logging.Config   `json:"logging"`
	Metrics      MetricsConfig    `json:"metrics"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(section("nats", c.Nats.validate()))
	el.Add(section("maze", c.Maze.validate()))
	el.Add(section("game", c.Game.validate()))
	el.Add(section("records", c.Records.validate()))
	el.Add(section("logging", c.Logging.Validate()))
	el.Add(section("metrics", c.Metrics.validate()))

	return el.Err()
}

func section(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

type MetricsConfig struct {
	Port uint16 `json:"port"`
	Path string `json:"path"`
}

func (c *MetricsConfig) validate() error {
	if c.Path != "" && c.Path[0] != '/' {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

func (c *MetricsConfig) enabled() bool {
	return c.Port != 0
}
