// Package session runs the select-file pipeline: read a layout description,
// log its tokens, parse it and report the outcome to the console log.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akam1o/guidl/pkg/console"
	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/export"
	"github.com/akam1o/guidl/pkg/history"
	"github.com/akam1o/guidl/pkg/logger"
	"github.com/akam1o/guidl/pkg/settings"
)

// Console messages
const (
	msgNoSuchFile = "Error: No such file found. Please try again."
	msgEmptyFile  = "Error: File '%s' is empty."
	msgSuccess    = "Success: File '%s' successfully parsed!"
	msgFailed     = "Error: File '%s' parsing failed."
)

// Outcome is the result of one parse run
type Outcome struct {
	Name   string
	Source string
	Result *dsl.Result
	// RunID is the history ID; empty when history is disabled or recording failed
	RunID string
}

// Success reports whether a window was produced
func (o *Outcome) Success() bool {
	return o != nil && o.Result != nil && o.Result.Window != nil
}

// Session ties a console log to parser settings and an optional run history
type Session struct {
	id        string
	console   *console.Console
	settings  *settings.Settings
	store     history.Store
	log       *logger.Logger
	createdAt time.Time

	mu   sync.Mutex
	last *Outcome
}

// New creates a session. store and log may be nil.
func New(con *console.Console, cfg *settings.Settings, store history.Store, log *logger.Logger) *Session {
	if cfg == nil {
		cfg = settings.Default()
	}
	if con == nil {
		con = console.New(console.WithVerbose(cfg.Verbose))
	}
	if log == nil {
		log = logger.Discard("session")
	}

	id := uuid.New().String()
	return &Session{
		id:        id,
		console:   con,
		settings:  cfg,
		store:     store,
		log:       log.WithField("session_id", id),
		createdAt: time.Now(),
	}
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Console() *console.Console { return s.console }
func (s *Session) History() history.Store    { return s.store }
func (s *Session) CreatedAt() time.Time      { return s.createdAt }

// Last returns the most recent outcome, or nil
func (s *Session) Last() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ParseFile reads and parses the file at path. Exactly one outcome line is
// logged for a file that could be read.
func (s *Session) ParseFile(ctx context.Context, path string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	s.console.AddLogEntry(fmt.Sprintf("--- %s ---", name))

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		s.console.AddLogEntry(msgNoSuchFile)
		return nil, errors.FileNotFound(path)
	}
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
	}
	if err != nil {
		s.console.AddLogEntry(msgNoSuchFile)
		return nil, errors.FileRead(path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.console.AddLogEntry(msgNoSuchFile)
		return nil, errors.FileRead(path, err)
	}
	if len(data) == 0 {
		s.console.AddLogEntry(fmt.Sprintf(msgEmptyFile, name))
		return nil, errors.FileEmpty(path)
	}

	return s.parse(ctx, name, string(data))
}

// ParseText parses text as if it were read from a file called name
func (s *Session) ParseText(ctx context.Context, name, text string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.console.AddLogEntry(fmt.Sprintf("--- %s ---", name))
	return s.parse(ctx, name, text)
}

func (s *Session) parse(ctx context.Context, name, text string) (*Outcome, error) {
	verbose := s.console.Verbose()
	opts := s.settings.ParserOptions(s.console)
	opts.Verbose = verbose

	start := time.Now()
	res, parseErr := dsl.Parse(text, opts)
	out := &Outcome{Name: name, Source: text, Result: res}

	if parseErr == nil {
		s.console.AddLogEntry(fmt.Sprintf(msgSuccess, name))
	} else {
		s.console.AddLogEntry(fmt.Sprintf(msgFailed, name))
	}

	s.log.Debug("Parsed layout description",
		slog.String("name", name),
		slog.Int("tokens", len(res.Tokens)),
		slog.Bool("success", parseErr == nil),
		slog.Duration("elapsed", time.Since(start)),
	)

	s.record(ctx, out)

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	if parseErr != nil {
		return out, errors.LayoutParseError(name, parseErr)
	}
	return out, nil
}

// record stores the run; a history failure is logged and does not fail the parse
func (s *Session) record(ctx context.Context, out *Outcome) {
	if s.store == nil {
		return
	}

	run := &history.Run{
		SessionID:  s.id,
		Name:       out.Name,
		Source:     out.Source,
		Success:    out.Success(),
		TokenCount: len(out.Result.Tokens),
	}
	if out.Success() {
		run.Outline = export.Text(out.Result.Window)
	}
	if d := out.Result.Diagnostic; d != nil {
		run.Diagnostic = d.Error()
	}

	id, err := s.store.Record(ctx, run)
	if err != nil {
		s.log.Warn("Failed to record parse run",
			slog.String("name", out.Name),
			slog.Any("error", err),
		)
		return
	}
	out.RunID = id
}
