// Package logging builds the structured logger shared by the dispatcher's
// default diagnostics sink and the pixdecodectl CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the shared logger.
type Options struct {
	JSON      bool
	Level     slog.Level
	RotateDir string // when non-empty, file output is routed through lumberjack
	AppName   string
}

// Logger builds a *slog.Logger writing to w (and, when opts.RotateDir is set,
// also to a rotating file under that directory named "<AppName>.log").
func Logger(w io.Writer, opts Options) *slog.Logger {
	writers := []io.Writer{w}
	if opts.RotateDir != "" {
		name := opts.AppName
		if name == "" {
			name = "pixdecode"
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.RotateDir + "/" + name + ".log",
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	var out io.Writer = io.MultiWriter(writers...)

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, handlerOpts)
	} else {
		h = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

// Default returns a logger writing text at info level to stdout, used when a
// caller never installs one of its own.
func Default() *slog.Logger {
	return Logger(os.Stdout, Options{Level: slog.LevelInfo})
}

type ctxKey struct{}

// AppendCtx returns a context carrying additional attributes that ctxHandler
// will attach to every record logged through it, mirroring the
// request/correlation-scoped grouping a long-running host process wants
// without threading a logger through every call.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if existing, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		attrs = append(append([]slog.Attr{}, existing...), attrs...)
	}
	return context.WithValue(parent, ctxKey{}, attrs)
}

// ctxHandler injects attributes stashed via AppendCtx into every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
