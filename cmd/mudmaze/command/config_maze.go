package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudmaze/internal/chatfilter"
	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/pixil98/go-mudmaze/internal/storage"
)

type MazeConfig struct {
	Path       string `json:"path"`
	ID         string `json:"id"`
	ChatFilter string `json:"chat_filter,omitempty"`
}

func (c *MazeConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("path is required"))
	} else if _, err := os.Stat(c.Path); err != nil {
		el.Add(fmt.Errorf("invalid path %q: %w", c.Path, err))
	}
	if c.ID == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if c.ChatFilter != "" {
		if _, err := os.Stat(c.ChatFilter); err != nil {
			el.Add(fmt.Errorf("invalid chat_filter %q: %w", c.ChatFilter, err))
		}
	}

	return el.Err()
}

func (c *MazeConfig) buildMaze() (*game.Maze, error) {
	store, err := storage.NewFileStore[*game.MazeSpec](c.Path)
	if err != nil {
		return nil, fmt.Errorf("loading mazes from %s: %w", c.Path, err)
	}

	spec, ok := store.Get(c.ID)
	if !ok {
		return nil, fmt.Errorf("maze %q not found in %s (have %v)", c.ID, c.Path, store.IDs())
	}

	return game.NewMaze(spec)
}

func (c *MazeConfig) buildChatFilter() (*chatfilter.ChatFilter, error) {
	if c.ChatFilter == "" {
		return chatfilter.New(nil), nil
	}

	cfg, err := chatfilter.LoadConfig(c.ChatFilter)
	if err != nil {
		return nil, err
	}
	return chatfilter.New(cfg), nil
}
