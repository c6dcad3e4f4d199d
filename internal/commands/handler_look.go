package commands

import (
	"context"
	"strconv"
	"strings"
)

func lookCommands() []*Command {
	return []*Command{
		{
			Name:        "look",
			Aliases:     []string{"l"},
			Description: "Describe room",
			Run: func(ctx context.Context, cmdCtx *CommandContext) error {
				return cmdCtx.World.Look(cmdCtx.Player)
			},
		},
		{
			Name:        "map",
			Aliases:     []string{"m"},
			Usage:       "map [<level>] [<username>]",
			Description: "Show automap",
			Inputs: []InputSpec{
				{Name: "level", Type: InputTypeString},
				{Name: "username", Type: InputTypeString},
			},
			Run: showMap,
		},
		{
			Name:        "listen",
			Description: "Listen to surroundings",
			Run:         listen,
		},
	}
}

// showMap renders the automap of one level. Admins may name another player.
// A level that is missing or out of range falls back to the player's own.
func showMap(ctx context.Context, cmdCtx *CommandContext) error {
	target := cmdCtx.Player
	if name := cmdCtx.String("username"); name != "" && cmdCtx.IsAdmin() {
		p, err := findPlayer(cmdCtx.World, name)
		if err != nil {
			return err
		}
		target = p
	}

	level := target.Position.Level
	if n, err := strconv.Atoi(cmdCtx.String("level")); err == nil && n >= 0 && n < cmdCtx.World.Maze().Grid().Depth {
		level = n
	}

	out, err := target.Automap.Render(level, target.Position)
	if err != nil {
		return err
	}
	cmdCtx.Tell(out)
	return nil
}

func listen(ctx context.Context, cmdCtx *CommandContext) error {
	sounds, err := cmdCtx.World.Listen(cmdCtx.Player)
	if err != nil {
		return err
	}
	if len(sounds) == 0 {
		cmdCtx.Tell("You listen to your surroundings but hear nothing of note.")
		return nil
	}
	cmdCtx.Tell(strings.Join(sounds, "\n"))
	return nil
}
