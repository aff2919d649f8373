package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// placeholder for fields the request never supplied.
const placeholderNA = "N/A"

// Format selects the rendering of audit entries.
type Format string

const (
	// FormatText renders a human-readable line followed by an audit.*
	// key=value tail for log scrapers.
	FormatText Format = "text"
	// FormatJSON renders a structured record.
	FormatJSON Format = "json"
)

// Logger is the audit boundary consumed by handlers. Implementations must
// be fire-and-forget: an audit emission never fails the caller.
type Logger interface {
	Log(ctx context.Context, entry Log)
}

// SlogLogger renders audit entries onto a slog logger.
type SlogLogger struct {
	logger *slog.Logger
	format Format
}

// NewSlogLogger builds an audit logger. Unknown formats fall back to text.
func NewSlogLogger(logger *slog.Logger, format Format) *SlogLogger {
	if format != FormatJSON {
		format = FormatText
	}
	return &SlogLogger{logger: logger, format: format}
}

func (l *SlogLogger) Log(ctx context.Context, entry Log) {
	switch l.format {
	case FormatJSON:
		l.emitJSON(ctx, entry)
	default:
		l.emitText(ctx, entry)
	}
}

func (l *SlogLogger) emitJSON(ctx context.Context, entry Log) {
	attrs := []slog.Attr{
		slog.String("role", entry.Target),
		slog.String("actor", entry.Actor),
		slog.String("operation", string(entry.Operation)),
		slog.String("status", string(entry.Status)),
		slog.Group("resource",
			slog.String("entity_id", orNA(entry.Resource.EntityID)),
			slog.String("authority_id", orNA(entry.Resource.AuthorityID)),
			slog.String("action", orNA(entry.Resource.Action)),
			slog.String("resource", orNA(entry.Resource.Resource)),
		),
		slog.String("timestamp", entry.Timestamp.Format(time.RFC3339)),
		slog.String("thread_id", stringOrNA(entry.ThreadID)),
	}
	if key, value, ok := strings.Cut(entry.Extra, "="); ok {
		attrs = append(attrs, slog.String(key, value))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

func (l *SlogLogger) emitText(ctx context.Context, entry Log) {
	line := fmt.Sprintf("%s: %s operation by %s - %s", entry.Target, entry.Operation, entry.Actor, entry.Status)
	if _, value, ok := strings.Cut(entry.Extra, "="); ok {
		line += ": " + value
	}

	parts := []string{
		"audit.role=" + entry.Target,
		"audit.actor=" + entry.Actor,
		"audit.operation=" + string(entry.Operation),
		"audit.status=" + string(entry.Status),
		"audit.resource.entity_id=" + orNA(entry.Resource.EntityID),
		"audit.resource.authority_id=" + orNA(entry.Resource.AuthorityID),
		"audit.resource.action=" + orNA(entry.Resource.Action),
		"audit.resource.resource=" + orNA(entry.Resource.Resource),
		"audit.timestamp=" + entry.Timestamp.Format(time.RFC3339),
		"audit.thread_id=" + stringOrNA(entry.ThreadID),
	}
	if entry.Extra != "" {
		parts = append(parts, entry.Extra)
	}

	l.logger.Log(ctx, slog.LevelInfo, line+" | "+strings.Join(parts, " "))
}

func orNA[T fmt.Stringer](v *T) string {
	if v == nil {
		return placeholderNA
	}
	return (*v).String()
}

func stringOrNA(v string) string {
	if v == "" {
		return placeholderNA
	}
	return v
}
