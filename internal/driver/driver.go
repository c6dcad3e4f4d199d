package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = time.Second * 2
)

// Manager is housekeeping run once per tick.
type Manager interface {
	Tick(context.Context) error
}

// ManagerFunc adapts a function to the Manager interface.
type ManagerFunc func(context.Context) error

func (f ManagerFunc) Tick(ctx context.Context) error {
	return f(ctx)
}

type namedManager struct {
	name string
	m    Manager
}

// Driver ticks its managers in registration order. A failing manager is
// logged and does not stop the others or the loop.
type Driver struct {
	tickLength time.Duration
	managers   []namedManager
}

func NewDriver(opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				slog.ErrorContext(ctx, "driver tick", "error", err)
			}
		}
	}
}

// Tick runs every manager once and reports all of their errors together.
func (d *Driver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()
	for _, nm := range d.managers {
		if err := nm.m.Tick(ctx); err != nil {
			el.Add(fmt.Errorf("%s: %w", nm.name, err))
		}
	}
	return el.Err()
}
