// Package logger настраивает slog: всё в stdout, ошибки дополнительно в файл.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// dualHandler пишет каждую запись в основной вывод, а ошибки ещё и в файл.
type dualHandler struct {
	core   slog.Handler
	errors slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.core.Enabled(ctx, lvl) || h.errors.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	if h.core.Enabled(ctx, r.Level) {
		if err = h.core.Handle(ctx, r); err != nil {
			return err
		}
	}

	// Сбой записи в файл не должен ронять основной лог
	if r.Level >= slog.LevelError && h.errors.Enabled(ctx, r.Level) {
		_ = h.errors.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		core:   h.core.WithAttrs(attrs),
		errors: h.errors.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		core:   h.core.WithGroup(name),
		errors: h.errors.WithGroup(name),
	}
}

// New собирает логгер для окружения env. В dev пишем JSON, в остальных текст;
// в prod уровень info. errorsOut может быть nil — тогда файла ошибок нет.
func New(env string, out, errorsOut io.Writer) *slog.Logger {
	level := slog.LevelDebug
	if env == EnvProd {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var core slog.Handler
	switch env {
	case EnvDev:
		core = slog.NewJSONHandler(out, opts)
	default:
		core = slog.NewTextHandler(out, opts)
	}

	if errorsOut == nil {
		return slog.New(core)
	}

	return slog.New(&dualHandler{
		core:   core,
		errors: slog.NewTextHandler(errorsOut, &slog.HandlerOptions{Level: slog.LevelError}),
	})
}

// Setup: логгер сервиса: stdout плюс errorLogPath для ошибок.
func Setup(env, errorLogPath string) *slog.Logger {
	errorFile, err := os.OpenFile(errorLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		slog.Warn("Cannot open error log file", "error", err)
		return New(env, os.Stdout, nil)
	}

	return New(env, os.Stdout, errorFile)
}

// Discard: логгер для тестов и тихого режима CLI.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
