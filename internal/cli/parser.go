package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage is returned when the positional arguments are absent.
var ErrUsage = errors.New("usage: fimon [flags] <config_file> <init|show|diff|update>")

// Action is one of the four commands a run executes.
type Action string

const (
	ActionInit   Action = "init"
	ActionShow   Action = "show"
	ActionDiff   Action = "diff"
	ActionUpdate Action = "update"
)

// Command represents the parsed CLI input.
type Command struct {
	ConfigPath string
	Action     Action

	JSONOutput bool // --json
	CIMode     bool // --ci
	Quiet      bool // --quiet
}

// ParseArgs parses CLI arguments into a Command. It expects args to be
// os.Args[1:]. Flags may appear anywhere; exactly two positional arguments
// are required: the configuration file and the command.
func ParseArgs(args []string) (Command, error) {
	var cmd Command
	var positional []string

	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			switch strings.TrimPrefix(arg, "--") {
			case "json":
				cmd.JSONOutput = true
			case "ci":
				cmd.CIMode = true
			case "quiet":
				cmd.Quiet = true
			default:
				return Command{}, fmt.Errorf("unknown flag %s", arg)
			}
			continue
		}
		positional = append(positional, arg)
	}

	if len(positional) != 2 {
		return Command{}, ErrUsage
	}

	cmd.ConfigPath = positional[0]
	switch a := Action(positional[1]); a {
	case ActionInit, ActionShow, ActionDiff, ActionUpdate:
		cmd.Action = a
	default:
		return Command{}, fmt.Errorf("unknown command %q (expected init, show, diff or update)", positional[1])
	}

	return cmd, nil
}
