// Package logging sets up the core's slog output: a console handler
// plus, when a Seq endpoint is configured, a structured sink so a
// source's decode/splice/emit diagnostics (§7) can be queried across a
// whole run rather than grepped out of a text log.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	slogseq "github.com/sokkalf/slog-seq"

	"github.com/leengari/logminer-core/internal/env"
)

// multiHandler forwards log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Enable if any handler is enabled for this level
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// LevelForVerbosity maps a source's configured dump verbosity (§6.4
// dumplogfile) onto the minimum slog level the console/Seq handlers
// accept: DumpOff keeps the log to warnings and above, DumpSummary adds
// info-level pipeline events, DumpFull adds per-record decode/splice
// diagnostics at debug.
func LevelForVerbosity(v env.Verbosity) slog.Level {
	switch v {
	case env.DumpFull:
		return slog.LevelDebug
	case env.DumpSummary:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// SetupLogger builds the core's logger at the given minimum level and
// returns a cleanup function to flush and close any network handler.
// seqURL is the Seq ingestion endpoint; an empty string disables the Seq
// handler and leaves the console as the sole sink.
func SetupLogger(level slog.Level, seqURL string) (*slog.Logger, func()) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})

	if seqURL == "" {
		return slog.New(consoleHandler), func() {}
	}

	_, seqHandler := slogseq.NewLogger(
		seqURL,
		slogseq.WithBatchSize(1),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}),
	)

	// Seq unreachable at startup: fall back to console only rather than
	// failing the whole core over an optional diagnostics sink.
	if seqHandler == nil {
		return slog.New(consoleHandler), func() {}
	}

	multi := &multiHandler{
		handlers: []slog.Handler{consoleHandler, seqHandler},
	}
	logger := slog.New(multi)
	closeFn := func() {
		seqHandler.Close()
	}
	return logger, closeFn
}
