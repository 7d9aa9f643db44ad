package dsl

import (
	"fmt"
)

// Category classifies a parse diagnostic
type Category string

const (
	// CategoryGrammar is an expected-kind vs encountered-kind mismatch
	CategoryGrammar Category = "grammar_mismatch"
	// CategoryValueRange is a NUMBER token that does not fit the integer domain
	CategoryValueRange Category = "value_range"
	// CategoryStructural is a free-form mismatch not reducible to one expected kind
	CategoryStructural Category = "structural"
)

// ParseError is the single diagnostic surfaced by a parse
type ParseError struct {
	Category Category

	// Expected is meaningful only when HasExpected is set
	Expected    Kind
	HasExpected bool
	Encountered Kind

	Line int
	// Rule is the grammar rule that detected the mismatch
	Rule string
	// Message replaces the expected/encountered wording for custom diagnostics
	Message string
}

// Error implements the error interface (terse form, no rule name)
func (e *ParseError) Error() string {
	return e.Format(false)
}

// Format renders the diagnostic line; verbose appends the producing rule
func (e *ParseError) Format(verbose bool) string {
	var msg string
	if e.HasExpected {
		msg = fmt.Sprintf("Error: Expected %s, encountered %s (line %d)", e.Expected, e.Encountered, e.Line)
	} else {
		msg = fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	if verbose && e.Rule != "" {
		msg += " [" + e.Rule + "]"
	}
	return msg
}

// LogSink receives human-readable log lines (the status console)
type LogSink interface {
	AddLogEntry(message string)
}

// Reporter latches the first diagnostic of a parse; later reports are absorbed
type Reporter struct {
	sink    LogSink
	verbose bool
	first   *ParseError
}

// NewReporter creates a reporter; sink may be nil
func NewReporter(sink LogSink, verbose bool) *Reporter {
	return &Reporter{sink: sink, verbose: verbose}
}

// Expected records a grammar mismatch and always returns false so rules can
// `return r.Expected(...)`
func (r *Reporter) Expected(expected Kind, encountered Token, rule string) bool {
	return r.latch(&ParseError{
		Category:    CategoryGrammar,
		Expected:    expected,
		HasExpected: true,
		Encountered: encountered.Kind,
		Line:        encountered.Line,
		Rule:        rule,
	})
}

// Custom records a free-form diagnostic and always returns false
func (r *Reporter) Custom(category Category, message string, at Token, rule string) bool {
	return r.latch(&ParseError{
		Category:    category,
		Encountered: at.Kind,
		Line:        at.Line,
		Rule:        rule,
		Message:     message,
	})
}

func (r *Reporter) latch(e *ParseError) bool {
	if r.first != nil {
		return false
	}
	r.first = e
	if r.sink != nil {
		r.sink.AddLogEntry(e.Format(r.verbose))
	}
	return false
}

// Latched reports whether a diagnostic has been recorded
func (r *Reporter) Latched() bool {
	return r.first != nil
}

// First returns the latched diagnostic, or nil
func (r *Reporter) First() *ParseError {
	return r.first
}
