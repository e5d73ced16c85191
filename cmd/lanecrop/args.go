package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/user/lanecrop/pkg/ports"
)

// reorderArgs moves positional arguments behind the flags so the input may
// appear anywhere, as in "lanecrop in.mp4 -f 10 -d 5". urfave/cli stops
// flag parsing at the first positional argument. Tokens from a subcommand
// name onward are kept in place.
func reorderArgs(args []string, flags []cli.Flag, commands []*cli.Command) ([]string, error) {
	if len(args) < 2 {
		return args, nil
	}

	valued := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(*cli.BoolFlag); ok {
			continue
		}
		for _, name := range f.Names() {
			valued[name] = true
		}
	}
	isCommand := func(s string) bool {
		for _, c := range commands {
			if c.HasName(s) {
				return true
			}
		}
		return false
	}

	out := []string{args[0]}
	var positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case tok == "--":
			positional = append(positional, rest[i+1:]...)
			i = len(rest)
		case tok == "-" || !strings.HasPrefix(tok, "-"):
			if len(positional) == 0 && isCommand(tok) {
				return append(out, rest[i:]...), nil
			}
			positional = append(positional, tok)
		default:
			out = append(out, tok)
			name := strings.TrimLeft(tok, "-")
			if strings.Contains(name, "=") || !valued[name] {
				continue
			}
			if i+1 == len(rest) {
				return nil, fmt.Errorf("%w: flag needs an argument: %s", ports.ErrArgument, tok)
			}
			i++
			out = append(out, rest[i])
		}
	}

	if len(positional) > 0 {
		out = append(out, "--")
		out = append(out, positional...)
	}
	return out, nil
}
