package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

var errHelp = errors.New("help requested")

type cliArgs struct {
	inputFile   string
	outputFile  string
	turnPenalty int
	profile     string
}

// parseArgs accepts [run] <inputFile> [outputFile] [--turn <penalty>] [--profile <name>].
func parseArgs(args []string, defaultProfile string, defaultTurnPenalty int) (cliArgs, error) {
	parsed := cliArgs{}

	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&parsed.turnPenalty, "turn", defaultTurnPenalty, "turn penalty")
	fs.StringVar(&parsed.profile, "profile", defaultProfile, "routing profile")

	positionals := make([]string, 0, 3)
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return parsed, errHelp
			}
			return parsed, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positionals = append(positionals, rest[0])
		rest = rest[1:]
	}

	if len(positionals) > 0 && positionals[0] == "help" {
		return parsed, errHelp
	}
	if len(positionals) > 0 && positionals[0] == "run" {
		positionals = positionals[1:]
	}

	switch len(positionals) {
	case 0:
		return parsed, errors.New("missing input file")
	case 1:
		parsed.inputFile = positionals[0]
	case 2:
		parsed.inputFile = positionals[0]
		parsed.outputFile = positionals[1]
	default:
		return parsed, fmt.Errorf("unexpected argument %q", positionals[2])
	}

	if parsed.turnPenalty < 0 {
		return parsed, fmt.Errorf("turn penalty must not be negative: %d", parsed.turnPenalty)
	}
	if parsed.profile == "" {
		return parsed, errors.New("empty profile")
	}
	return parsed, nil
}
