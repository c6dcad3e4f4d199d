package commands

import (
	"context"
	"fmt"
	"strings"
)

func (h *Handler) helpCommand() *Command {
	return &Command{
		Name:        "help",
		Aliases:     []string{"h"},
		Usage:       "help [<command>]",
		Description: "Show commands",
		Inputs: []InputSpec{
			{Name: "command", Type: InputTypeString},
		},
		Run: h.help,
	}
}

func (h *Handler) help(ctx context.Context, cmdCtx *CommandContext) error {
	if name := cmdCtx.String("command"); name != "" {
		return h.showCommand(cmdCtx, name)
	}
	cmdCtx.Tell(h.listCommands(cmdCtx.IsAdmin()))
	return nil
}

// listCommands renders the command table, shortcuts in parentheses.
func (h *Handler) listCommands(admin bool) string {
	lines := []string{"I understand the following commands (shortcuts in parentheses):"}
	for _, cmd := range h.list {
		if cmd.Hidden || (cmd.Admin && !admin) {
			continue
		}
		short := ""
		if len(cmd.Aliases) > 0 {
			short = "(" + cmd.Aliases[0] + ")"
		}
		lines = append(lines, fmt.Sprintf("%-10s%-5s: %s", cmd.Name, short, cmd.Description))
	}
	lines = append(lines, "Type `help <command>` to query usage statements.")
	return strings.Join(lines, "\n")
}

// showCommand prints the usage block of one command, looked up by name or shortcut.
func (h *Handler) showCommand(cmdCtx *CommandContext, name string) error {
	cmd, ok := h.commands[strings.ToLower(name)]
	if !ok || (cmd.Admin && !cmdCtx.IsAdmin()) {
		return UserErrorf("Command `%s` not found", name)
	}
	cmdCtx.Tell(cmd.usage())
	return nil
}
