package commands

import (
	"context"
	"strconv"
)

func (h *Handler) sessionCommands() []*Command {
	return []*Command{
		{
			Name:        "quit",
			Aliases:     []string{"q"},
			Description: "Quit the maze",
			Run: func(ctx context.Context, cmdCtx *CommandContext) error {
				return cmdCtx.World.Quit(cmdCtx.Player)
			},
		},
		{
			Name:        "away",
			Usage:       "away [<message>]",
			Description: "Toggle away status",
			Inputs: []InputSpec{
				{Name: "message", Type: InputTypeString, Rest: true},
			},
			Run: h.away,
		},
		{
			Name:        "debug",
			Description: "Query debug mode",
			Hidden:      true,
			Run: func(ctx context.Context, cmdCtx *CommandContext) error {
				cmdCtx.Tell(strconv.FormatBool(cmdCtx.Player.Flags.Debug))
				return nil
			},
		},
	}
}

// away toggles the away flag. The message keeps the player's own spacing.
func (h *Handler) away(ctx context.Context, cmdCtx *CommandContext) error {
	p := cmdCtx.Player
	if p.Flags.Away {
		cmdCtx.World.ClearAway(p)
		return nil
	}

	msg, err := h.clean(cmdCtx.Raw)
	if err != nil {
		return err
	}
	cmdCtx.World.SetAway(p, msg)
	return nil
}

func easterEggCommand() *Command {
	return &Command{
		Name:        "xyzzy",
		Aliases:     []string{"plugh"},
		Description: "Nothing happens",
		Hidden:      true,
		Run: func(ctx context.Context, cmdCtx *CommandContext) error {
			cmdCtx.Tell("Nothing happens.")
			return nil
		},
	}
}
