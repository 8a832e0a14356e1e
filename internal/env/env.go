// Package env carries the per-Source state that the decoder and store
// would otherwise reach through process globals: trace verbosity, the
// dump stream, and the shutdown token (§9 "Global state").
package env

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leengari/logminer-core/internal/shutdown"
)

// Verbosity mirrors the config's dumplogfile field (§6.4): 0 off, 1
// summary, 2 full hex dump.
type Verbosity int

const (
	DumpOff     Verbosity = 0
	DumpSummary Verbosity = 1
	DumpFull    Verbosity = 2
)

// Env is the explicit, per-source context threaded through the decoder
// and transaction store, in place of process-global state.
type Env struct {
	Logger     *slog.Logger
	Dump       Verbosity
	Trace      int
	SortCols   int
	Shutdown   *shutdown.Token
	SourceName string

	// RunID tags every log line from this Env with a unique identifier
	// for the current process run, so the same source's logs across
	// restarts (no persisted state, §1 Non-goals) can still be told
	// apart in a shared log sink.
	RunID string
}

// New builds an Env for one Source.
func New(logger *slog.Logger, sourceName string, dump Verbosity, trace, sortCols int, tok *shutdown.Token) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()
	return &Env{
		Logger:     logger.With("source", sourceName, "run_id", runID),
		Dump:       dump,
		Trace:      trace,
		SortCols:   sortCols,
		Shutdown:   tok,
		SourceName: sourceName,
		RunID:      runID,
	}
}

// Diagnostic logs a non-fatal decode/assembly diagnostic (§7 taxonomy
// #1-#5) at a level appropriate to its class, gated by Dump/Trace.
func (e *Env) Diagnostic(level slog.Level, msg string, args ...any) {
	if e.Dump == DumpOff && e.Trace == 0 && level < slog.LevelWarn {
		return
	}
	e.Logger.Log(context.Background(), level, msg, args...)
}
