package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/akam1o/guidl/pkg/console"
	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/export"
	"github.com/akam1o/guidl/pkg/history"
	"github.com/akam1o/guidl/pkg/session"
)

// errExit ends the shell loop
var errExit = fmt.Errorf("exit")

// InteractiveShell is the interactive log shell: it opens files, shows the
// console log and toggles verbose output
type InteractiveShell struct {
	session *session.Session
	rl      *readline.Instance
	out     io.Writer
}

// NewInteractiveShell creates a new interactive shell
func NewInteractiveShell(sess *session.Session, historyFile string) (*InteractiveShell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              buildPrompt(sess),
		HistoryFile:         historyFile,
		AutoComplete:        createCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	return &InteractiveShell{
		session: sess,
		rl:      rl,
		out:     rl.Stdout(),
	}, nil
}

// Run starts the interactive shell
func (sh *InteractiveShell) Run(ctx context.Context) error {
	defer sh.rl.Close()

	fmt.Fprintln(sh.out, "Welcome to the guidl interactive shell")
	fmt.Fprintln(sh.out, "Type 'help' for available commands, 'exit' or 'quit' to exit")
	fmt.Fprintln(sh.out)
	for _, line := range sh.session.Console().Lines() {
		fmt.Fprintln(sh.out, line)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		sh.rl.SetPrompt(buildPrompt(sh.session))

		line, err := sh.rl.Readline()
		if err != nil { // io.EOF, readline.ErrInterrupt
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := sh.processCommand(ctx, line); err != nil {
			if err == errExit {
				break
			}
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
	}

	return nil
}

// processCommand processes a single command
func (sh *InteractiveShell) processCommand(ctx context.Context, line string) error {
	parts, err := tokenizeCommand(line)
	if err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "?":
		sh.showHelp()
		return nil

	case "exit", "quit":
		return errExit

	case "open":
		if len(args) != 1 {
			return fmt.Errorf("'open' requires exactly one file")
		}
		// Parse outcome and diagnostics are already in the mirrored log
		if _, err := sh.session.ParseFile(ctx, args[0]); err != nil && !errors.HasCode(err, errors.ErrCodeLayoutParse) {
			return err
		}
		return nil

	case "verbose":
		return sh.cmdVerbose(args)

	case "clear":
		sh.session.Console().Clear()
		for _, line := range sh.session.Console().Lines() {
			fmt.Fprintln(sh.out, line)
		}
		return nil

	case "log":
		return sh.cmdLog(args)

	case "history":
		return sh.cmdHistory(ctx, args)

	case "export":
		return sh.cmdExport(args)

	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", command)
	}
}

// Command handlers

func (sh *InteractiveShell) cmdVerbose(args []string) error {
	con := sh.session.Console()
	switch {
	case len(args) == 0:
		con.ToggleVerbose()
	case args[0] == "on":
		con.SetVerbose(true)
	case args[0] == "off":
		con.SetVerbose(false)
	default:
		return fmt.Errorf("'verbose' accepts 'on' or 'off'")
	}

	if con.Verbose() {
		fmt.Fprintln(sh.out, "Verbose output on")
	} else {
		fmt.Fprintln(sh.out, "Verbose output off")
	}
	return nil
}

func (sh *InteractiveShell) cmdLog(args []string) error {
	lines := sh.session.Console().Lines()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid line count: %s", args[0])
		}
		if n < len(lines) {
			lines = lines[len(lines)-n:]
		}
	}
	for _, line := range lines {
		fmt.Fprintln(sh.out, line)
	}
	return nil
}

func (sh *InteractiveShell) cmdHistory(ctx context.Context, args []string) error {
	store := sh.session.History()
	if store == nil {
		return fmt.Errorf("run history is disabled; set history_path or pass -history")
	}

	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid limit: %s", args[0])
		}
		limit = n
	}

	runs, err := store.List(ctx, &history.ListOptions{Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(sh.out, "No runs recorded")
		return nil
	}
	return FormatRuns(sh.out, runs)
}

func (sh *InteractiveShell) cmdExport(args []string) error {
	last := sh.session.Last()
	if !last.Success() {
		return fmt.Errorf("no parsed window; 'open' a valid file first")
	}

	format := export.FormatText
	if len(args) > 0 {
		f, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}
		format = f
	}

	if len(args) > 1 {
		file, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer file.Close()
		if err := export.Render(format, last.Result.Window, file); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Exported %s to %s\n", last.Name, args[1])
		return nil
	}

	return export.Render(format, last.Result.Window, sh.out)
}

func (sh *InteractiveShell) showHelp() {
	fmt.Fprintln(sh.out, "Available commands:")
	fmt.Fprintln(sh.out, "  help                      Show this help message")
	fmt.Fprintln(sh.out, "  open <file>               Parse a layout description")
	fmt.Fprintln(sh.out, "  verbose [on|off]          Toggle token dumps and rule names")
	fmt.Fprintln(sh.out, "  clear                     Reset the log")
	fmt.Fprintln(sh.out, "  log [N]                   Show the log (last N lines)")
	fmt.Fprintln(sh.out, "  history [N]               Show last N recorded runs (default: 10)")
	fmt.Fprintln(sh.out, "  export [format] [file]    Export the last parsed window (text, yaml, html)")
	fmt.Fprintln(sh.out, "  exit, quit                Exit the shell")
	fmt.Fprintln(sh.out)
}

// Prompt builder
func buildPrompt(sess *session.Session) string {
	if sess.Console().Verbose() {
		return "guidl [verbose]> "
	}
	return "guidl> "
}

// Tab completion
func createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("open"),
		readline.PcItem("verbose",
			readline.PcItem("on"),
			readline.PcItem("off"),
		),
		readline.PcItem("clear"),
		readline.PcItem("log"),
		readline.PcItem("history"),
		readline.PcItem("export",
			readline.PcItem(string(export.FormatText)),
			readline.PcItem(string(export.FormatYAML)),
			readline.PcItem(string(export.FormatHTML)),
		),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// Filter input runes (allow standard characters)
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ: // Disable Ctrl+Z
		return r, false
	}
	return r, true
}

// tokenizeCommand splits a shell line on whitespace. Double or single
// quotes group words; the other quote character is literal inside them.
func tokenizeCommand(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var quote byte
	quoted := false // an empty "" still yields a token

	for i := 0; i < len(line); i++ {
		char := line[i]

		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			} else {
				current.WriteByte(char)
			}
		case char == '"' || char == '\'':
			quote = char
			quoted = true
		case char == ' ' || char == '\t':
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteByte(char)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unmatched quote in command")
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// cmdShell starts the interactive shell
func (a *app) cmdShell(ctx context.Context) int {
	store, err := a.openHistory(ctx)
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	if store != nil {
		defer store.Close()
	}

	// The log banner is printed once at startup; entries are mirrored as they arrive
	con := console.New(console.WithVerbose(a.settings.Verbose), console.WithMirror(a.stdout))
	sess := session.New(con, a.settings, store, a.log)

	shell, err := NewInteractiveShell(sess, a.settings.ShellHistoryFile)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: failed to initialize interactive shell: %v\n", err)
		return ExitOperationError
	}

	if err := shell.Run(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return ExitOperationError
	}

	return ExitSuccess
}
