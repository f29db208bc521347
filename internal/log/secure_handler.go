package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces sensitive attribute values in log output.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are always masked.
// The probing layer logs request metadata liberally, so anything that can
// carry a credential is listed here rather than trusting call sites.
var sensitiveKeys = map[string]bool{
	// HTTP request material
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"referer_auth":  true,
	"x-api-key":     true,

	// Service credentials used by passive signal sources
	"api_key":       true,
	"apikey":        true,
	"breach_token":  true,
	"search_key":    true,
	"openai_key":    true,
	"access_token":  true,
	"refresh_token": true,

	// Generic
	"password": true,
	"secret":   true,
	"token":    true,
}

// sensitivePatterns mask values that look like credentials regardless of
// the attribute key.
var sensitivePatterns = []*regexp.Regexp{
	// JWTs
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer / basic auth headers
	regexp.MustCompile(`(?i)^bearer\s+\S+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// OpenAI-style keys
	regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),
	// Long opaque tokens
	regexp.MustCompile(`^[A-Za-z0-9]{40,}$`),
}

// SecureHandler wraps an slog.Handler and masks sensitive attributes
// before delegating. It works with any underlying handler, so text and
// JSON output both get the same redaction.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps the given handler. A nil handler falls back to
// slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and delegates.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks the attributes before handing them down.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup delegates to the underlying handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func (h *SecureHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = h.maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] || hasSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// hasSensitiveKeyword catches compound keys like "aggregator_api_key".
// The bare word "key" is deliberately excluded: it appears in harmless
// attributes like "cache_key" and "account_key".
func hasSensitiveKeyword(key string) bool {
	for _, kw := range []string{"password", "secret", "token", "credential", "api_key", "apikey"} {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a redacting slog.Logger with text output.
// Verbose selects debug level; otherwise warnings and up.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a redacting slog.Logger with JSON output for
// structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
