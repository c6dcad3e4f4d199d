package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/records"
)

type RecordsDriver string

const (
	RecordsMemory RecordsDriver = "memory"
	RecordsSQLite RecordsDriver = "sqlite"
	RecordsBolt   RecordsDriver = "bolt"
)

type RecordsConfig struct {
	Driver RecordsDriver `json:"driver"`
	Path   string        `json:"path"`
}

func (c *RecordsConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Driver {
	case "", RecordsMemory:
	case RecordsSQLite, RecordsBolt:
		if c.Path == "" {
			el.Add(fmt.Errorf("path is required for the %s driver", c.Driver))
		}
	default:
		el.Add(fmt.Errorf("unknown driver %q", c.Driver))
	}

	return el.Err()
}

func (c *RecordsConfig) openStore(ctx context.Context) (records.Store, error) {
	switch c.Driver {
	case "", RecordsMemory:
		return records.NewMemoryStore(), nil
	case RecordsSQLite:
		return records.OpenSQLite(ctx, c.Path)
	case RecordsBolt:
		return records.OpenBolt(c.Path)
	default:
		return nil, fmt.Errorf("unknown records driver %q", c.Driver)
	}
}
