package tui

import "strings"

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// Commands understood by the prompt.
const (
	CmdOpen    = "open"
	CmdRefresh = "refresh"
	CmdDetails = "details"
	CmdHelp    = "help"
	CmdQuit    = "quit"
)

var aliases = map[string]string{
	"o":    CmdOpen,
	"chat": CmdOpen,
	"r":    CmdRefresh,
	"h":    CmdHelp,
	"q":    CmdQuit,
	"q!":   CmdQuit,
}

// CommandNames lists the full command names, for completion.
func CommandNames() []string {
	return []string{CmdOpen, CmdRefresh, CmdDetails, CmdHelp, CmdQuit}
}

// ParseCommand parses a command string (without the leading ':'). Aliases
// resolve to their full name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if full, ok := aliases[cmd.Name]; ok {
		cmd.Name = full
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}
