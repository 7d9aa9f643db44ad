package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akam1o/guidl/pkg/history"
	"github.com/akam1o/guidl/pkg/logger"
	"github.com/akam1o/guidl/pkg/settings"
)

var (
	// Version information (set by ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitOperationError = 1
	ExitUsageError     = 2
)

type flags struct {
	configPath  string
	verbose     bool
	logLevel    string
	historyPath string
	maxDepth    int

	// set records which flags were given explicitly so they override settings
	set map[string]bool
}

// app carries what every command needs
type app struct {
	settings *settings.Settings
	log      *logger.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// run parses global flags, loads settings and dispatches the subcommand
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitUsageError
	}

	if len(rest) < 1 {
		showUsage(stderr)
		return ExitUsageError
	}

	a, err := newApp(f, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitOperationError
	}

	return a.dispatch(ctx, rest[0], rest[1:])
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("guidl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", settings.DefaultPath,
		"Path to settings file")
	fs.BoolVar(&f.verbose, "verbose", true,
		"Dump tokens and annotate diagnostics with rule names")
	fs.StringVar(&f.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	fs.StringVar(&f.historyPath, "history", "",
		"Path to run history database (empty disables history)")
	fs.IntVar(&f.maxDepth, "max-depth", 0,
		"Maximum Panel/Group nesting depth")
	fs.Usage = func() { showUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, fs.Args(), nil
}

// newApp loads settings and applies explicit flag overrides
func newApp(f *flags, stdout, stderr io.Writer) (*app, error) {
	// Settings are loaded before the configured level is known
	bootLevel := slog.LevelWarn
	if f.logLevel != "" {
		level, err := logger.ParseLevel(f.logLevel)
		if err != nil {
			return nil, err
		}
		bootLevel = level
	}
	bootLog := logger.New("settings", &logger.Config{Level: bootLevel, Output: stderr})

	cfg, err := settings.Load(f.configPath, bootLog)
	if err != nil {
		return nil, err
	}

	if f.set["verbose"] {
		cfg.Verbose = f.verbose
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.set["history"] {
		cfg.HistoryPath = f.historyPath
	}
	if f.set["max-depth"] {
		cfg.MaxDepth = f.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	return &app{
		settings: cfg,
		log:      logger.New("guidl", &logger.Config{Level: level, Output: stderr}),
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

func (a *app) dispatch(ctx context.Context, command string, args []string) int {
	a.log.Debug(fmt.Sprintf("Dispatching command: %s, args: %v", command, args))

	switch command {
	case "help", "-h", "--help":
		showHelp(a.stdout)
		return ExitSuccess

	case "version", "-v", "--version":
		return a.cmdVersion()

	case "parse":
		if len(args) != 1 {
			return a.usageError("'parse' requires exactly one file")
		}
		return a.cmdParse(ctx, args[0])

	case "tokens":
		if len(args) != 1 {
			return a.usageError("'tokens' requires exactly one file")
		}
		return a.cmdTokens(args[0])

	case "export":
		return a.cmdExport(ctx, args)

	case "diff":
		if len(args) != 2 {
			return a.usageError("'diff' requires two files")
		}
		return a.cmdDiff(ctx, args[0], args[1])

	case "watch":
		if len(args) != 1 {
			return a.usageError("'watch' requires exactly one file")
		}
		return a.cmdWatch(ctx, args[0])

	case "history":
		return a.cmdHistory(ctx, args)

	case "shell":
		return a.cmdShell(ctx)

	default:
		return a.usageError(fmt.Sprintf("unknown command '%s'", command))
	}
}

func (a *app) usageError(msg string) int {
	fmt.Fprintf(a.stderr, "Error: %s\n\n", msg)
	showUsage(a.stderr)
	return ExitUsageError
}

// openHistory opens the configured history store; it returns nil when history is disabled
func (a *app) openHistory(ctx context.Context) (history.Store, error) {
	if a.settings.HistoryPath == "" {
		return nil, nil
	}
	return history.NewSQLiteStore(ctx, a.settings.HistoryPath, a.log.WithField("store", "history"))
}

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage: guidl [options] <command> [args...]

Commands:
  help                          Show this help message
  version                       Show version information
  parse <file>                  Parse a layout description and log the result
  tokens <file>                 List the tokens of a layout description
  export [-format f] [-o out] <file>
                                Export the parsed tree (text, yaml, html)
  diff <a> <b>                  Compare the parsed trees of two files
  watch <file>                  Re-parse a file whenever it changes
  history list [N]              List recorded parse runs (default: 10)
  history show <id>             Show a recorded run
  history compare <a> <b>       Diff the input of two recorded runs
  shell                         Start the interactive log shell

Options:
  -config <path>      Settings file (default: guidl.yaml)
  -verbose=<bool>     Dump tokens and annotate diagnostics (default: true)
  -log-level <level>  Log level: debug, info, warn, error
  -history <path>     Run history database (empty disables history)
  -max-depth <n>      Maximum Panel/Group nesting depth

Examples:
  guidl parse calculator.txt
  guidl -verbose=false parse calculator.txt
  guidl export -format html calculator.txt > calculator.html
  guidl -history runs.db history list 5

`)
}

func showHelp(w io.Writer) {
	showUsage(w)
}
