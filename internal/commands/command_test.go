package commands

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestParseValue(t *testing.T) {
	tests := map[string]struct {
		inputType InputType
		raw       string
		exp       any
		expErr    string
	}{
		"string type": {
			inputType: InputTypeString,
			raw:       "hello",
			exp:       "hello",
		},
		"number type valid": {
			inputType: InputTypeNumber,
			raw:       "42",
			exp:       42,
		},
		"number type negative": {
			inputType: InputTypeNumber,
			raw:       "-3",
			exp:       -3,
		},
		"number type invalid": {
			inputType: InputTypeNumber,
			raw:       "abc",
			expErr:    `"abc" is not a valid number.`,
		},
		"unknown type": {
			inputType: InputType("bogus"),
			raw:       "test",
			expErr:    `unknown input type "bogus"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseValue(tt.inputType, tt.raw)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "value", got, tt.exp)
		})
	}
}

func TestParseInputs(t *testing.T) {
	cmd := &Command{
		Name:        "tell",
		Usage:       "tell <username> <dialogue>",
		Description: "Speak to a player",
		Inputs: []InputSpec{
			{Name: "username", Type: InputTypeString, Required: true},
			{Name: "dialogue", Type: InputTypeString, Required: true, Rest: true},
		},
	}
	numeric := &Command{
		Name:        "pick",
		Description: "Pick a number",
		Inputs: []InputSpec{
			{Name: "n", Type: InputTypeNumber},
		},
	}

	tests := map[string]struct {
		cmd         *Command
		args        []string
		expUsername string
		expDialogue string
		expN        int
		expErr      string
	}{
		"rest joins remaining words": {
			cmd:         cmd,
			args:        []string{"bob", "hello", "there"},
			expUsername: "bob",
			expDialogue: "hello there",
		},
		"missing required shows usage": {
			cmd:    cmd,
			args:   []string{"bob"},
			expErr: "usage: tell <username> <dialogue>",
		},
		"usage carries username note": {
			cmd:    cmd,
			args:   nil,
			expErr: "*<username> is case-insensitive, can be partial",
		},
		"too many without rest": {
			cmd:    numeric,
			args:   []string{"1", "2"},
			expErr: "usage: pick",
		},
		"optional omitted": {
			cmd:  numeric,
			args: nil,
		},
		"number parsed": {
			cmd:  numeric,
			args: []string{"7"},
			expN: 7,
		},
		"number invalid": {
			cmd:    numeric,
			args:   []string{"seven"},
			expErr: `"seven" is not a valid number.`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			inputs, err := parseInputs(tt.cmd, tt.args)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			cmdCtx := &CommandContext{Inputs: inputs}
			testutil.AssertEqual(t, "username", cmdCtx.String("username"), tt.expUsername)
			testutil.AssertEqual(t, "dialogue", cmdCtx.String("dialogue"), tt.expDialogue)
			n, _ := cmdCtx.Number("n")
			testutil.AssertEqual(t, "n", n, tt.expN)
		})
	}
}

func TestCommand_Validate(t *testing.T) {
	run := func(context.Context, *CommandContext) error { return nil }

	tests := map[string]struct {
		cmd    *Command
		expErr string
	}{
		"valid": {
			cmd: &Command{Name: "look", Run: run},
		},
		"no name": {
			cmd:    &Command{Run: run},
			expErr: "command name not set",
		},
		"no run": {
			cmd:    &Command{Name: "look"},
			expErr: "run func not set",
		},
		"unknown input type": {
			cmd:    &Command{Name: "x", Run: run, Inputs: []InputSpec{{Name: "a", Type: "date"}}},
			expErr: `unknown type "date"`,
		},
		"rest not last": {
			cmd: &Command{Name: "x", Run: run, Inputs: []InputSpec{
				{Name: "a", Type: InputTypeString, Rest: true},
				{Name: "b", Type: InputTypeString},
			}},
			expErr: "only the last input can have rest",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}
