package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-mudmaze/internal/game"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Single word, or the rest of the line when Rest is set
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string
	Type     InputType
	Required bool
	Rest     bool // If true, captures all remaining input
}

// ParsedInput is a validated command input.
type ParsedInput struct {
	Spec  *InputSpec
	Raw   string
	Value any // int for number, string for string
}

// CommandFunc runs a command against the world. It is always called inside
// World.Exec.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) error

// Command is one verb the dispatcher understands.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Admin       bool // Only admins may run or see it
	Hidden      bool // Left out of the help listing
	Inputs      []InputSpec
	Run         CommandFunc
}

func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name not set")
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: run func not set", c.Name)
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("command %q input %d: name is required", c.Name, i)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			return fmt.Errorf("command %q input %q: unknown type %q", c.Name, input.Name, input.Type)
		}
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("command %q input %q: only the last input can have rest", c.Name, input.Name)
		}
	}

	return nil
}

// usage is the "usage:" block shown by help and on malformed input.
func (c *Command) usage() string {
	u := c.Usage
	if u == "" {
		u = c.Name
	}
	out := "usage: " + u + "\n" + c.Description
	if strings.Contains(u, "<username>") {
		out += "\n*<username> is case-insensitive, can be partial"
	}
	return out
}

// CommandContext carries everything a command needs for one invocation.
type CommandContext struct {
	World   *game.World
	Player  *game.Player
	Command *Command
	Name    string // The word the player typed
	Raw     string // The whole line after the command word
	Inputs  map[string]ParsedInput
}

// Tell sends msg to the invoking player.
func (c *CommandContext) Tell(msg string) {
	c.World.Tell(c.Player, msg)
}

// String returns a string input, or "" when it was not given.
func (c *CommandContext) String(name string) string {
	in, ok := c.Inputs[name]
	if !ok {
		return ""
	}
	s, _ := in.Value.(string)
	return s
}

// Number returns a number input and whether it was given.
func (c *CommandContext) Number(name string) (int, bool) {
	in, ok := c.Inputs[name]
	if !ok {
		return 0, false
	}
	n, ok := in.Value.(int)
	return n, ok
}

func (c *CommandContext) IsAdmin() bool {
	return c.World.IsAdmin(c.Player.ID)
}

// parseInputs validates raw words against input specs. Arity problems come
// back as the command's usage text.
func parseInputs(cmd *Command, rawArgs []string) (map[string]ParsedInput, error) {
	specs := cmd.Inputs

	required := 0
	for _, spec := range specs {
		if spec.Required {
			required++
		}
	}
	if len(rawArgs) < required {
		return nil, NewUserError(cmd.usage())
	}

	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(cmd.usage())
	}

	inputs := make(map[string]ParsedInput, len(specs))
	argIndex := 0
	for i := range specs {
		spec := &specs[i]
		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(cmd.usage())
			}
			continue
		}

		var raw string
		if spec.Rest {
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}
		inputs[spec.Name] = ParsedInput{Spec: spec, Raw: raw, Value: value}
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil
	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown input type %q", inputType)
	}
}
