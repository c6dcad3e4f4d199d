package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/pixil98/go-mudmaze/internal/topology"
)

const teleportPlayerUsage = "usage: teleport spawn\nTeleport to the spawn room"

// moveCommands builds one command per direction, with the direction code as
// its shortcut.
func moveCommands() []*Command {
	cmds := make([]*Command, 0, len(topology.Directions))
	for _, d := range topology.Directions {
		cmds = append(cmds, &Command{
			Name:        d.Name(),
			Aliases:     []string{string(d)},
			Description: "Go " + d.Name(),
			Run:         moveFunc(d),
		})
	}
	return cmds
}

func moveFunc(d topology.Direction) CommandFunc {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		err := cmdCtx.World.Move(cmdCtx.Player, d)
		if errors.Is(err, game.ErrNoExit) {
			return UserErrorf("You can't go %s.", d.Name())
		}
		return err
	}
}

func teleportCommand() *Command {
	return &Command{
		Name:        "teleport",
		Usage:       "teleport {spawn | (<level index> <room index>) | (<x> <y> <z>)}",
		Description: "Teleport to a room",
		Inputs: []InputSpec{
			{Name: "destination", Type: InputTypeString, Rest: true},
		},
		Run: teleport,
	}
}

// teleport moves the player to spawn, or for admins to any room given as
// level and room index or as x, y and z.
func teleport(ctx context.Context, cmdCtx *CommandContext) error {
	args := strings.Fields(cmdCtx.String("destination"))
	admin := cmdCtx.IsAdmin()

	usage := NewUserError(cmdCtx.Command.usage())
	if !admin {
		usage = NewUserError(teleportPlayerUsage)
	}
	if len(args) == 0 || len(args) > 3 || (!admin && len(args) != 1) {
		return usage
	}

	maze := cmdCtx.World.Maze()
	var dest topology.Position
	switch len(args) {
	case 1:
		if strings.ToLower(args[0]) != "spawn" {
			return usage
		}
		dest = maze.Spawn()
	case 2:
		n, err := numbers(args)
		if err != nil {
			return err
		}
		dest = topology.Position{Level: n[0], Room: n[1]}
	case 3:
		n, err := numbers(args)
		if err != nil {
			return err
		}
		g := maze.Grid()
		if n[0] < 0 || n[0] >= g.Width || n[1] < 0 || n[1] >= g.Height {
			return NewUserError("Destination invalid")
		}
		dest = g.Index(n[0], n[1], n[2])
	}

	err := cmdCtx.World.Teleport(cmdCtx.Player, dest)
	if errors.Is(err, game.ErrInvalidDestination) {
		return NewUserError("Destination invalid")
	}
	return err
}

func numbers(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := parseValue(InputTypeNumber, a)
		if err != nil {
			return nil, err
		}
		out[i] = v.(int)
	}
	return out, nil
}
