package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/history"
)

// FormatTable formats data as a table with aligned columns
func FormatTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// FormatTokens writes one row per token
func FormatTokens(w io.Writer, tokens []dsl.Token) error {
	rows := make([][]string, 0, len(tokens))
	for _, tok := range tokens {
		rows = append(rows, []string{strconv.Itoa(tok.Line), tok.Kind.String(), tok.Lexeme})
	}
	return FormatTable(w, []string{"Line", "Kind", "Lexeme"}, rows)
}

// FormatRuns writes one row per recorded run
func FormatRuns(w io.Writer, runs []*history.Run) error {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.CreatedAt.Local().Format(time.DateTime),
			run.Name,
			resultLabel(run.Success),
			strconv.Itoa(run.TokenCount),
		})
	}
	return FormatTable(w, []string{"ID", "Time", "File", "Result", "Tokens"}, rows)
}

// FormatRun writes the details of one run
func FormatRun(w io.Writer, run *history.Run) {
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Session:    %s\n", run.SessionID)
	fmt.Fprintf(w, "File:       %s\n", run.Name)
	fmt.Fprintf(w, "Time:       %s\n", run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Result:     %s\n", resultLabel(run.Success))
	fmt.Fprintf(w, "Tokens:     %d\n", run.TokenCount)
	if run.Diagnostic != "" {
		fmt.Fprintf(w, "Diagnostic: %s\n", run.Diagnostic)
	}
	fmt.Fprintf(w, "\nSource:\n%s\n", strings.TrimRight(run.Source, "\n"))
	if run.Outline != "" {
		fmt.Fprintf(w, "\nTree:\n%s", run.Outline)
	}
}

// FormatDiff writes a diff, or "No changes"
func FormatDiff(w io.Writer, diff *history.DiffResult) {
	if diff == nil || !diff.HasChanges {
		fmt.Fprintln(w, "No changes")
		return
	}
	fmt.Fprint(w, diff.DiffText)
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
