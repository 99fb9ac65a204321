// Package actions holds the built-in action table: the platform-neutral
// checks and commands the dispatcher runs against incoming events.
package actions

import (
	"strings"
)

// Command is one slash command parsed from a comment body.
type Command struct {
	Name string
	Args []string
}

// ParseCommands extracts slash commands from a comment. A command is a line
// whose first token starts with '/'; everything else on the line becomes
// arguments. Non-command lines are ignored.
func ParseCommands(body string) []Command {
	var out []Command
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") || len(fields[0]) < 2 {
			continue
		}
		out = append(out, Command{
			Name: strings.ToLower(strings.TrimPrefix(fields[0], "/")),
			Args: fields[1:],
		})
	}
	return out
}

// HasCommand reports whether the body contains the named command with the
// given leading arguments.
func HasCommand(body, name string, args ...string) bool {
	for _, cmd := range ParseCommands(body) {
		if cmd.Name != name || len(cmd.Args) < len(args) {
			continue
		}
		match := true
		for i, want := range args {
			if !strings.EqualFold(cmd.Args[i], want) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
