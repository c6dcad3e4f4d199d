package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/chatfilter"
	"github.com/pixil98/go-mudmaze/internal/display"
	"github.com/pixil98/go-mudmaze/internal/game"
)

const unknownCommand = "unknown"

// Observer is told about every dispatched command.
type Observer interface {
	CommandRun(name string)
}

type noopObserver struct{}

func (noopObserver) CommandRun(string) {}

// SessionState is what a connection needs to know about its player between
// input lines.
type SessionState struct {
	Known  bool
	Online bool
	Quit   bool
}

// Handler parses player input and runs commands against the world.
type Handler struct {
	world    *game.World
	filter   *chatfilter.ChatFilter
	observer Observer
	commands map[string]*Command
	list     []*Command
}

type HandlerOpt func(*Handler)

// WithFilter sets the filter applied to speech and away messages.
func WithFilter(f *chatfilter.ChatFilter) HandlerOpt {
	return func(h *Handler) {
		h.filter = f
	}
}

func WithObserver(o Observer) HandlerOpt {
	return func(h *Handler) {
		h.observer = o
	}
}

// NewHandler builds a handler with the built-in command set.
func NewHandler(world *game.World, opts ...HandlerOpt) (*Handler, error) {
	h := &Handler{
		world:    world,
		observer: noopObserver{},
		commands: make(map[string]*Command),
	}

	for _, opt := range opts {
		opt(h)
	}

	var builtins []*Command
	builtins = append(builtins, moveCommands()...)
	builtins = append(builtins, lookCommands()...)
	builtins = append(builtins, h.sessionCommands()...)
	builtins = append(builtins, h.helpCommand())
	builtins = append(builtins, h.messageCommands()...)
	builtins = append(builtins, statsCommands()...)
	builtins = append(builtins, teleportCommand())
	builtins = append(builtins, easterEggCommand())

	for _, cmd := range builtins {
		if err := h.Register(cmd); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Register adds a command under its name and aliases.
func (h *Handler) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	words := append([]string{cmd.Name}, cmd.Aliases...)
	for _, w := range words {
		if _, exists := h.commands[w]; exists {
			return fmt.Errorf("command word %q already registered", w)
		}
	}
	for _, w := range words {
		h.commands[w] = cmd
	}
	h.list = append(h.list, cmd)
	return nil
}

// Join brings a user into the maze.
func (h *Handler) Join(ctx context.Context, u game.User) error {
	return h.world.Exec(func() error {
		_, err := h.world.Join(u)
		return err
	})
}

// Disconnect takes a user out of the maze after their connection dropped.
func (h *Handler) Disconnect(ctx context.Context, userID string) error {
	return h.world.Exec(func() error {
		p, ok := h.world.Player(userID)
		if !ok {
			return nil
		}
		return h.world.Disconnect(p)
	})
}

// State reports the user's player flags.
func (h *Handler) State(userID string) SessionState {
	var st SessionState
	_ = h.world.Exec(func() error {
		p, ok := h.world.Player(userID)
		if !ok {
			return nil
		}
		st = SessionState{Known: true, Online: p.Flags.Online, Quit: p.Flags.Quit}
		return nil
	})
	return st
}

// Exec runs one line of player input. User errors are shown to the player;
// anything else is returned.
func (h *Handler) Exec(ctx context.Context, userID string, line string) error {
	return h.world.Exec(func() error {
		p, ok := h.world.Player(userID)
		if !ok || !p.Flags.Online {
			return game.ErrNotPlaying
		}
		return h.dispatch(ctx, p, line)
	})
}

func (h *Handler) dispatch(ctx context.Context, p *game.Player, line string) error {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	word := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])

	p.RecordCommand(line)
	h.world.StopIdleTimer(p)
	if word != "away" {
		h.world.ClearAway(p)
	}

	err := h.run(ctx, p, word, fields[1:], rest)

	var userErr *UserError
	if errors.As(err, &userErr) {
		h.world.Tell(p, userErr.Message)
		err = nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "running command", "player", p.ID, "command", word, "error", err)
	}

	h.world.StartIdleTimer(p)
	return err
}

func (h *Handler) run(ctx context.Context, p *game.Player, word string, args []string, rest string) error {
	cmd, ok := h.commands[word]
	if !ok || (cmd.Admin && !h.world.IsAdmin(p.ID)) {
		h.observer.CommandRun(unknownCommand)
		return UserErrorf("I don't know the word `%s`.", word)
	}
	h.observer.CommandRun(cmd.Name)

	inputs, err := parseInputs(cmd, args)
	if err != nil {
		return err
	}

	return cmd.Run(ctx, &CommandContext{
		World:   h.world,
		Player:  p,
		Command: cmd,
		Name:    word,
		Raw:     rest,
		Inputs:  inputs,
	})
}

// clean runs speech through the chat filter.
func (h *Handler) clean(text string) (string, error) {
	res := h.filter.Check(text)
	if res.Blocked {
		return "", NewUserError("That message contains language that isn't allowed here.")
	}
	return res.Filtered, nil
}

// matchPlayers returns the players whose username contains name, ignoring case.
func matchPlayers(players []*game.Player, name string) []*game.Player {
	var out []*game.Player
	for _, p := range players {
		if display.ContainsFold(p.Username, name) {
			out = append(out, p)
		}
	}
	return out
}

// findPlayer resolves a partial username to exactly one known player.
func findPlayer(w *game.World, name string) (*game.Player, error) {
	matches := matchPlayers(w.Players(), name)
	switch len(matches) {
	case 0:
		return nil, NewUserError("User not found")
	case 1:
		return matches[0], nil
	default:
		return nil, UserErrorf("%s matches multiple players, be more specific.", name)
	}
}
