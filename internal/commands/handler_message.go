package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

func (h *Handler) messageCommands() []*Command {
	return []*Command{
		{
			Name:        "say",
			Usage:       "say <dialogue>",
			Description: "Speak to a room",
			Inputs: []InputSpec{
				{Name: "dialogue", Type: InputTypeString, Required: true, Rest: true},
			},
			Run: h.say,
		},
		{
			Name:        "tell",
			Usage:       "tell <username> <dialogue>",
			Description: "Speak to a player",
			Inputs: []InputSpec{
				{Name: "username", Type: InputTypeString, Required: true},
				{Name: "dialogue", Type: InputTypeString, Required: true, Rest: true},
			},
			Run: h.tell,
		},
		{
			Name:        "yell",
			Usage:       "yell <dialogue>",
			Description: "Speak to adjacent rooms",
			Inputs: []InputSpec{
				{Name: "dialogue", Type: InputTypeString, Required: true, Rest: true},
			},
			Run: h.yell,
		},
	}
}

func (h *Handler) say(ctx context.Context, cmdCtx *CommandContext) error {
	dialogue, err := h.clean(cmdCtx.String("dialogue"))
	if err != nil {
		return err
	}

	p := cmdCtx.Player
	if room := cmdCtx.World.Maze().Room(p.Position); room != nil {
		for _, o := range room.Players() {
			if o != p {
				cmdCtx.World.Tell(o, fmt.Sprintf("%s says \"%s\"", p.Username, dialogue))
			}
		}
	}
	cmdCtx.Tell(fmt.Sprintf("You say \"%s\"", dialogue))

	slog.DebugContext(ctx, "player said", "player", p.Username, "position", p.Position, "dialogue", dialogue)
	return nil
}

// tell speaks to one player in the same room, matched by partial username.
func (h *Handler) tell(ctx context.Context, cmdCtx *CommandContext) error {
	name := cmdCtx.String("username")
	dialogue, err := h.clean(cmdCtx.String("dialogue"))
	if err != nil {
		return err
	}

	p := cmdCtx.Player
	room := cmdCtx.World.Maze().Room(p.Position)
	if room == nil {
		return UserErrorf("%s is not present.", name)
	}

	matches := matchPlayers(room.Players(), name)
	switch len(matches) {
	case 0:
		return UserErrorf("%s is not present.", name)
	case 1:
	default:
		return UserErrorf("%s matches multiple players, be more specific.", name)
	}
	target := matches[0]

	cmdCtx.World.Tell(target, fmt.Sprintf("%s tells you \"%s\"", p.Username, dialogue))

	reply := fmt.Sprintf("You tell %s \"%s\"", target.Username, dialogue)
	if target.Flags.Away {
		reply += "\n" + target.Username + " is away"
		if target.AwayMessage != "" {
			reply += ": " + target.AwayMessage
		}
	}
	cmdCtx.Tell(reply)

	slog.DebugContext(ctx, "player told", "player", p.Username, "target", target.Username, "dialogue", dialogue)
	return nil
}

// yell reaches the speaker's room and every grid neighbor of it, exits or not.
func (h *Handler) yell(ctx context.Context, cmdCtx *CommandContext) error {
	dialogue, err := h.clean(strings.ToUpper(cmdCtx.String("dialogue")))
	if err != nil {
		return err
	}

	p := cmdCtx.Player
	maze := cmdCtx.World.Maze()
	if room := maze.Room(p.Position); room != nil {
		for _, o := range room.Players() {
			if o != p {
				cmdCtx.World.Tell(o, fmt.Sprintf("%s yells \"%s\"", p.Username, dialogue))
			}
		}
	}
	for _, n := range maze.Grid().Neighbors(p.Position) {
		room := maze.Room(n.Position)
		if room == nil {
			continue
		}
		for _, o := range room.Players() {
			cmdCtx.World.Tell(o, fmt.Sprintf("Someone yells \"%s\" from the %s.", dialogue, n.Direction.Opposite().Long()))
		}
	}
	cmdCtx.Tell(fmt.Sprintf("You yell \"%s\"", dialogue))

	slog.DebugContext(ctx, "player yelled", "player", p.Username, "position", p.Position, "dialogue", dialogue)
	return nil
}
