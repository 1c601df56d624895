package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// PrettyHandler escribe una línea por registro: badge de nivel coloreado,
// mensaje y atributos clave=valor. Pensado para leer la salida de un run
// desde una terminal o el mail de cron, no para ingesta estructurada.
type PrettyHandler struct {
	opts  *slog.HandlerOptions
	w     io.Writer
	attrs []slog.Attr
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, w: w}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelWarn
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(badge(r.Level))
	line.WriteString(" ")
	line.WriteString(r.Message)

	for _, attr := range h.attrs {
		line.WriteString(" ")
		line.WriteString(formatAttr(attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		line.WriteString(" ")
		line.WriteString(formatAttr(attr))
		return true
	})
	line.WriteString("\n")

	_, err := io.WriteString(h.w, line.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyHandler{opts: h.opts, w: h.w, attrs: merged}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	// La salida es una línea plana por registro, sin grupos.
	return h
}

func badge(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return color.HiBlackString("[DEBUG]")
	case slog.LevelInfo:
		return color.CyanString("[INFO] ")
	case slog.LevelWarn:
		return color.YellowString("[WARN] ")
	case slog.LevelError:
		return color.RedString("[ERROR]")
	default:
		return fmt.Sprintf("[%s]", level.String())
	}
}

func formatAttr(attr slog.Attr) string {
	if attr.Key == "error" || attr.Key == "err" {
		return color.RedString("%s=%s", attr.Key, attr.Value.String())
	}
	return color.HiBlackString("%s=%s", attr.Key, attr.Value.String())
}
