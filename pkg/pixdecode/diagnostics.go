package pixdecode

import (
	"log/slog"

	"github.com/google/uuid"
)

// Diagnostics is the host-facing message sink. A fatal condition is never
// routed through Diagnostics alone: it is reported as the error a
// dispatcher entry point returns, with Warn/Info used only for non-fatal
// engine chatter.
type Diagnostics interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// slogDiagnostics adapts a *slog.Logger to Diagnostics, tagging every record
// with a per-construction correlation id so a host aggregating logs from
// many concurrent decode calls can group one call's diagnostics together.
type slogDiagnostics struct {
	logger *slog.Logger
	callID string
}

// NewDiagnostics builds a Diagnostics backed by logger, tagged with a fresh
// correlation id.
func NewDiagnostics(logger *slog.Logger) Diagnostics {
	return &slogDiagnostics{logger: logger, callID: uuid.NewString()}
}

func (d *slogDiagnostics) Info(msg string, args ...any) {
	d.logger.Info(msg, append([]any{"call_id", d.callID}, args...)...)
}

func (d *slogDiagnostics) Warn(msg string, args ...any) {
	d.logger.Warn(msg, append([]any{"call_id", d.callID}, args...)...)
}

// defaultDiagnostics backs any Context that never sets one explicitly.
var defaultDiagnostics Diagnostics = NewDiagnostics(slog.Default())

// SetDefaultLogger replaces the logger backing defaultDiagnostics for
// contexts that never set their own. Intended for process start-up (see
// cmd/pixdecodectl).
func SetDefaultLogger(logger *slog.Logger) {
	defaultDiagnostics = NewDiagnostics(logger)
}
