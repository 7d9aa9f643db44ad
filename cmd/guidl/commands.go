package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/akam1o/guidl/pkg/console"
	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/export"
	"github.com/akam1o/guidl/pkg/history"
	"github.com/akam1o/guidl/pkg/session"
	"github.com/akam1o/guidl/pkg/watch"
)

// defaultHistoryLimit is used by 'history list' without N
const defaultHistoryLimit = 10

// newSession builds a session whose console is mirrored to w (nil for none)
func (a *app) newSession(w io.Writer, store history.Store) *session.Session {
	opts := []console.Option{
		console.WithBanner(""),
		console.WithVerbose(a.settings.Verbose),
	}
	if w != nil {
		opts = append(opts, console.WithMirror(w))
	}
	return session.New(console.New(opts...), a.settings, store, a.log)
}

// reportError prints err with its cause and suggested action when it carries them
func (a *app) reportError(err error) {
	var e *errors.Error
	if errors.As(err, &e) && e.Code != errors.ErrCodeLayoutParse {
		fmt.Fprintf(a.stderr, "Error: %s\n", e.Message)
		if e.Cause != "" {
			fmt.Fprintf(a.stderr, "  Cause:  %s\n", e.Cause)
		}
		if e.Action != "" {
			fmt.Fprintf(a.stderr, "  Action: %s\n", e.Action)
		}
		if e.Underlying != nil {
			a.log.ErrorWithCause(e.Message, e.Underlying, e.Cause, e.Action)
		}
		return
	}
	// Layout diagnostics were already written to the console log
	a.log.Debug("Command failed", "error", err)
}

func (a *app) cmdParse(ctx context.Context, path string) int {
	store, err := a.openHistory(ctx)
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	if store != nil {
		defer store.Close()
	}

	sess := a.newSession(a.stdout, store)
	out, err := sess.ParseFile(ctx, path)
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}

	if out.RunID != "" {
		fmt.Fprintf(a.stdout, "Run: %s\n", out.RunID)
	}
	return ExitSuccess
}

func (a *app) cmdTokens(path string) int {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			a.reportError(errors.FileNotFound(path))
		} else {
			a.reportError(errors.FileRead(path, err))
		}
		return ExitOperationError
	}
	defer file.Close()

	tokens, err := dsl.NewLexer(file).Tokenize()
	if err != nil {
		a.reportError(errors.FileRead(path, err))
		return ExitOperationError
	}

	if err := FormatTokens(a.stdout, tokens); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return ExitOperationError
	}
	return ExitSuccess
}

func (a *app) cmdExport(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	format := fs.String("format", "text", "Output format (text, yaml, html)")
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}
	if fs.NArg() != 1 {
		return a.usageError("'export' requires exactly one file")
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		a.reportError(err)
		return ExitUsageError
	}

	// The console log is only shown when parsing fails
	sess := a.newSession(nil, nil)
	out, err := sess.ParseFile(ctx, fs.Arg(0))
	if err != nil {
		for _, line := range sess.Console().Lines() {
			fmt.Fprintln(a.stderr, line)
		}
		a.reportError(err)
		return ExitOperationError
	}

	w := a.stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			a.reportError(errors.Wrap(err, errors.ErrCodeExport, fmt.Sprintf("Failed to create %s", *output), "", ""))
			return ExitOperationError
		}
		defer file.Close()
		w = file
	}

	if err := export.Render(f, out.Result.Window, w); err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	return ExitSuccess
}

func (a *app) cmdDiff(ctx context.Context, pathA, pathB string) int {
	outlines := make([]string, 2)
	for i, path := range []string{pathA, pathB} {
		sess := a.newSession(nil, nil)
		out, err := sess.ParseFile(ctx, path)
		if err != nil {
			for _, line := range sess.Console().Lines() {
				fmt.Fprintln(a.stderr, line)
			}
			a.reportError(err)
			return ExitOperationError
		}
		outlines[i] = export.Text(out.Result.Window)
	}

	FormatDiff(a.stdout, history.CompareTexts(outlines[0], outlines[1]))
	return ExitSuccess
}

func (a *app) cmdWatch(ctx context.Context, path string) int {
	store, err := a.openHistory(ctx)
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	if store != nil {
		defer store.Close()
	}

	sess := a.newSession(a.stdout, store)
	if _, err := sess.ParseFile(ctx, path); err != nil {
		a.reportError(err)
	}

	w, err := watch.New(path, a.settings.WatchDebounce, func(ctx context.Context, p string) {
		if _, err := sess.ParseFile(ctx, p); err != nil {
			a.reportError(err)
		}
	}, a.log.WithField("path", path))
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}

	if err := w.Run(ctx); err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	return ExitSuccess
}

func (a *app) cmdHistory(ctx context.Context, args []string) int {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	store, err := a.openHistory(ctx)
	if err != nil {
		a.reportError(err)
		return ExitOperationError
	}
	if store == nil {
		fmt.Fprintln(a.stderr, "Error: run history is disabled; set history_path or pass -history")
		return ExitOperationError
	}
	defer store.Close()

	switch sub {
	case "list":
		limit := defaultHistoryLimit
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return a.usageError(fmt.Sprintf("invalid limit: %s", args[0]))
			}
			limit = n
		}
		runs, err := store.List(ctx, &history.ListOptions{Limit: limit})
		if err != nil {
			a.reportError(err)
			return ExitOperationError
		}
		if len(runs) == 0 {
			fmt.Fprintln(a.stdout, "No runs recorded")
			return ExitSuccess
		}
		if err := FormatRuns(a.stdout, runs); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return ExitOperationError
		}
		return ExitSuccess

	case "show":
		if len(args) != 1 {
			return a.usageError("'history show' requires a run ID")
		}
		run, err := store.Get(ctx, args[0])
		if err != nil {
			a.reportError(err)
			return ExitOperationError
		}
		FormatRun(a.stdout, run)
		return ExitSuccess

	case "compare":
		if len(args) != 2 {
			return a.usageError("'history compare' requires two run IDs")
		}
		diff, err := store.Compare(ctx, args[0], args[1])
		if err != nil {
			a.reportError(err)
			return ExitOperationError
		}
		FormatDiff(a.stdout, diff)
		return ExitSuccess

	default:
		return a.usageError(fmt.Sprintf("unknown history subcommand '%s' (valid: list, show, compare)", sub))
	}
}
