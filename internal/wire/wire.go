// Package wire turns the one-command-per-line text protocol into a typed
// Command and formats responses in the "<command>: <value>" /
// "<command>: error <message>" shape the protocol requires.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a single parsed protocol line.
type Command struct {
	Name string
	Args []string

	raw string
}

// Parse splits a protocol line into a command name (the first
// whitespace-delimited token) and its raw argument string (everything
// after it, trimmed). Commands whose payload is itself a shell fragment
// must read Raw rather than Args so embedded whitespace survives.
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}
	fields := strings.Fields(line)
	name := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, name))
	return Command{Name: name, Args: splitArgs(rest), raw: rest}, true
}

// Raw returns the argument portion of the command as a single string,
// used by commands like button_shell/soft_poweroff_shell whose payload is
// an opaque shell fragment rather than tokenized arguments. For a Command
// built by Parse this is the line's argument text as received; for one
// built directly it is Args joined with single spaces.
func (c Command) Raw() string {
	if c.raw != "" {
		return c.raw
	}
	return strings.Join(c.Args, " ")
}

// Floats parses the command's arguments as a comma-delimited list of
// floats, as used by the range-valued set_* commands.
func (c Command) Floats() ([]float64, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("expected comma-separated values, got none")
	}
	parts := strings.Split(c.Raw(), ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Bool parses a boolean argument accepting true|false|0|1 per spec.
func Bool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func splitArgs(rest string) []string {
	if rest == "" {
		return nil
	}
	// A payload containing a comma (a range) is kept as one argument;
	// anything else is split on whitespace. Shell fragments are read
	// whole through Raw, not through Args.
	if strings.Contains(rest, ",") {
		return []string{rest}
	}
	return strings.Fields(rest)
}

// FormatValue renders a successful response line.
func FormatValue(command string, value any) string {
	return fmt.Sprintf("%s: %v\n", command, value)
}

// FormatError renders a failed response line.
func FormatError(command string, err error) string {
	return fmt.Sprintf("%s: error %s\n", command, err.Error())
}
