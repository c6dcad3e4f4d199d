package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-mudmaze/internal/display"
	"github.com/pixil98/go-mudmaze/internal/game"
)

var queryUsage = map[string]string{
	"players": "usage: query players {online | offline | all}\nList players",
	"coords":  "usage: query coords <username>\nShow a player's coordinates\n*<username> is case-insensitive, can be partial",
}

func statsCommands() []*Command {
	return []*Command{
		{
			Name:        "stats",
			Usage:       "stats {global | self | (player <username>)}",
			Description: "Game statistics",
			Inputs: []InputSpec{
				{Name: "scope", Type: InputTypeString},
				{Name: "username", Type: InputTypeString},
			},
			Run: stats,
		},
		{
			Name:        "query",
			Usage:       "query {players | coords}",
			Description: "Query various game details",
			Admin:       true,
			Inputs: []InputSpec{
				{Name: "topic", Type: InputTypeString},
				{Name: "arg", Type: InputTypeString},
			},
			Run: query,
		},
	}
}

func stats(ctx context.Context, cmdCtx *CommandContext) error {
	w := cmdCtx.World
	switch strings.ToLower(cmdCtx.String("scope")) {
	case "global":
		cmdCtx.Tell(globalStats(w))
	case "self":
		cmdCtx.Tell(playerStats(w, cmdCtx.Player, true))
	case "player":
		name := cmdCtx.String("username")
		if name == "" {
			return NewUserError(cmdCtx.Command.usage())
		}
		p, err := findPlayer(w, name)
		if err != nil {
			return err
		}
		cmdCtx.Tell(playerStats(w, p, false))
	default:
		return NewUserError(cmdCtx.Command.usage())
	}
	return nil
}

// statLine pads a label into the aligned "Label          : value" layout.
func statLine(label string, value any) string {
	return fmt.Sprintf("%-15s: %v", label, value)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC1123)
}

func globalStats(w *game.World) string {
	st := w.GlobalStats()
	lines := []string{
		"Global Stats",
		statLine("Players online", fmt.Sprintf("%d (apex: %d)", st.Online, st.High)),
		statLine("Total players", st.Total),
		statLine("Uptime", display.Duration(w.Now().Sub(st.Started))),
		statLine("Since", timestamp(st.Started)),
	}

	if st.Escapes.Count > 0 {
		lines = append(lines, "", "Escapes")
		lines = append(lines, escapeLines(w, st.Escapes)...)

		fastest, _ := w.EscapeRecord(st.Escapes.Records.Time)
		fewest, _ := w.EscapeRecord(st.Escapes.Records.Moves)
		lines = append(lines,
			"",
			"Records",
			statLine("Fastest time", fmt.Sprintf("%s (%s)", display.Duration(fastest.Time), fastest.Username)),
			statLine("Least moves", fmt.Sprintf("%d (%s)", fewest.Moves, fewest.Username)),
		)
	}

	return strings.Join(lines, "\n")
}

func playerStats(w *game.World, p *game.Player, self bool) string {
	title := "Your Stats"
	if !self {
		title = p.Username + "'s Stats"
	}

	status := "Offline"
	switch {
	case p.Flags.Online && p.Flags.Away:
		status = "Away"
	case p.Flags.Online:
		status = "Online"
	}

	lines := []string{
		title,
		statLine("Time", display.Duration(p.SessionTime(w.Now()))),
		statLine("Moves", p.Moves),
		statLine("Status", status),
	}
	if p.Flags.Online && p.Flags.Away && p.AwayMessage != "" {
		lines = append(lines, statLine("Away message", p.AwayMessage))
	}
	if !p.Flags.Online {
		lines = append(lines, statLine("Last seen", timestamp(p.LastQuit)))
	}
	lines = append(lines, statLine("Last join", timestamp(p.LastJoin)))
	if p.Flags.Online {
		lines = append(lines, statLine("First join", timestamp(p.FirstJoin)))
	} else {
		lines = append(lines, statLine("First seen", timestamp(p.FirstJoin)))
	}

	if p.Stats.Count > 0 {
		lines = append(lines, "", "Escapes")
		lines = append(lines, escapeLines(w, p.Stats)...)

		fastest, _ := w.EscapeRecord(p.Stats.Records.Time)
		fewest, _ := w.EscapeRecord(p.Stats.Records.Moves)
		lines = append(lines,
			"",
			"Bests",
			statLine("Fastest time", display.Duration(fastest.Time)),
			statLine("Least moves", fewest.Moves),
		)
	}

	return strings.Join(lines, "\n")
}

func escapeLines(w *game.World, s game.EscapeStats) []string {
	last, _ := w.EscapeRecord(s.Last)
	return []string{
		statLine("Escapes", s.Count),
		statLine("Average time", display.Duration(s.Averages.Time)),
		statLine("Average moves", s.Averages.Moves),
		statLine("Last escape", timestamp(last.Escaped)),
	}
}

// query answers admin questions about players and their whereabouts.
func query(ctx context.Context, cmdCtx *CommandContext) error {
	w := cmdCtx.World
	arg := cmdCtx.String("arg")

	switch strings.ToLower(cmdCtx.String("topic")) {
	case "players":
		var (
			label   string
			players []*game.Player
		)
		switch strings.ToLower(arg) {
		case "online":
			label, players = "Players Online", w.OnlinePlayers()
		case "offline":
			label = "Players Offline"
			for _, p := range w.Players() {
				if !p.Flags.Online {
					players = append(players, p)
				}
			}
		case "all":
			label, players = "All Players", w.Players()
		default:
			return NewUserError(queryUsage["players"])
		}
		cmdCtx.Tell(playerList(label, strings.ToLower(arg), players))
	case "coords":
		if arg == "" {
			return NewUserError(queryUsage["coords"])
		}
		p, err := findPlayer(w, arg)
		if err != nil {
			return err
		}
		x, y, z := w.Maze().Grid().Coords(p.Position)
		cmdCtx.Tell(fmt.Sprintf("X: %d, Y: %d, Z: %d (%d, %d)", x, y, z, p.Position.Level, p.Position.Room))
	default:
		return NewUserError(cmdCtx.Command.usage())
	}
	return nil
}

func playerList(label, which string, players []*game.Player) string {
	header := fmt.Sprintf("%s (%d)", label, len(players))
	if len(players) == 0 {
		return header + "\nNo players " + which
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Username
	}
	return header + "\n" + strings.Join(names, ", ")
}
