package scheduler

import (
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
)

// CompileCommands returns one compile database entry per attempted source,
// in task and source order.
func CompileCommands(tasks []*domain.CompileTask) []ports.CompileCommand {
	var entries []ports.CompileCommand
	for _, task := range tasks {
		for _, res := range task.Results() {
			if len(res.Command) == 0 {
				continue
			}
			entries = append(entries, ports.CompileCommand{
				Directory: task.Root,
				Command:   ShellJoin(res.Command),
				File:      res.Source,
			})
		}
	}
	return entries
}

// ShellJoin renders argv as a POSIX shell command line.
func ShellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$`*?[]{}()<>|&;#~!") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
