// internal/pkg/logger/handlers.go
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
)

// contextHandler adds request scoped values from the context to every record
type contextHandler struct {
	next slog.Handler
}

func newContextHandler(next slog.Handler) *contextHandler {
	return &contextHandler{next: next}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := extractContextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

// samplingHandler keeps one in every n records below warn level. Warnings
// and errors always pass. Derived handlers share the counter.
type samplingHandler struct {
	next  slog.Handler
	every uint64
	seen  *atomic.Uint64
}

func newSamplingHandler(next slog.Handler, rate float64) *samplingHandler {
	every := uint64(math.Round(1 / rate))
	if every < 1 {
		every = 1
	}
	return &samplingHandler{next: next, every: every, seen: new(atomic.Uint64)}
}

func (h *samplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *samplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.next.Handle(ctx, r)
	}
	if h.seen.Add(1)%h.every != 0 {
		return nil
	}
	r.AddAttrs(slog.Uint64("sampled_every", h.every))
	return h.next.Handle(ctx, r)
}

func (h *samplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &samplingHandler{next: h.next.WithAttrs(attrs), every: h.every, seen: h.seen}
}

func (h *samplingHandler) WithGroup(name string) slog.Handler {
	return &samplingHandler{next: h.next.WithGroup(name), every: h.every, seen: h.seen}
}

const redacted = "***REDACTED***"

// sensitiveKeys are attribute key fragments whose values are never logged.
var sensitiveKeys = []string{
	"password", "pwd", "secret", "token", "authorization",
	"api_key", "access_key", "credential",
}

type redaction struct {
	re   *regexp.Regexp
	repl string
}

// redactions scrub credentials that end up inside free text, such as a
// connection string in a driver error.
var redactions = []redaction{
	{regexp.MustCompile(`(?i)\b(password|pwd|secret|token|api[-_]?key)\s*[:=]\s*["']?([^"'\s&]+)`), "$1=" + redacted},
	{regexp.MustCompile(`(?i)\b((?:postgres(?:ql)?|redis)://[^:/@\s]*:)[^@\s]+@`), "${1}" + redacted + "@"},
	{regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`), redacted},
}

// sanitizationHandler masks secrets in messages and attributes, including
// attributes bound with With and nested groups.
type sanitizationHandler struct {
	next slog.Handler
}

func newSanitizationHandler(next slog.Handler) *sanitizationHandler {
	return &sanitizationHandler{next: next}
}

func (h *sanitizationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sanitizationHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, sanitizeString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *sanitizationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &sanitizationHandler{next: h.next.WithAttrs(clean)}
}

func (h *sanitizationHandler) WithGroup(name string) slog.Handler {
	return &sanitizationHandler{next: h.next.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, redacted)
		}
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, sanitizeString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = sanitizeAttr(g)
		}
		return slog.Group(a.Key, clean...)
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func sanitizeString(s string) string {
	for _, r := range redactions {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[37m",
	slog.LevelInfo:  "\033[34m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

const (
	colorReset = "\033[0m"
	colorKey   = "\033[36m"
)

// prettyTextHandler writes one human readable line per record for
// development and terminal tools. Colors are only used on a terminal.
type prettyTextHandler struct {
	opts   slog.HandlerOptions
	color  bool
	prefix string // open groups, dot separated
	attrs  []byte // preformatted attrs from WithAttrs

	mu *sync.Mutex
	w  io.Writer
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *prettyTextHandler {
	h := &prettyTextHandler{color: color, mu: &sync.Mutex{}, w: w}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	level := r.Level.String()
	if h.color {
		buf.WriteString(levelColors[r.Level])
	}
	fmt.Fprintf(&buf, "%s %-5s", r.Time.Format("2006-01-02 15:04:05.000"), level)
	if h.color {
		buf.WriteString(colorReset)
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *prettyTextHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix + a.Key + "."
		if a.Key == "" {
			p = prefix
		}
		for _, g := range v.Group() {
			h.appendAttr(buf, p, g)
		}
		return
	}

	buf.WriteByte(' ')
	if h.color {
		buf.WriteString(colorKey)
	}
	fmt.Fprintf(buf, "%s%s=%v", prefix, a.Key, v.Any())
	if h.color {
		buf.WriteString(colorReset)
	}
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	buf.Write(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&buf, h.prefix, a)
	}
	clone := *h
	clone.attrs = buf.Bytes()
	return &clone
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
