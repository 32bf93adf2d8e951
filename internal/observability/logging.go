// Package observability provides logging, metrics and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger is the global structured logger used throughout the application.
var Logger *slog.Logger

var level = new(slog.LevelVar)

type contextKey string

// CorrelationIDKey is the context key carrying the correlation ID of a unit of work.
const CorrelationIDKey contextKey = "correlation_id"

// ctxHandler adds context values to every record before passing it on.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	level.Set(slog.LevelInfo)

	var handler slog.Handler
	if os.Getenv("APP_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	Logger = slog.New(&ctxHandler{handler})
}

// SetLevel changes the minimum level of the global logger.
// Unknown names leave the level untouched and return false.
func SetLevel(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info", "":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return false
	}
	return true
}

// NewCorrelationID creates a new unique correlation ID.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// RepoLogger provides structured logging for repository operations on one table.
type RepoLogger struct {
	table  string
	logger *slog.Logger
}

// NewRepoLogger creates a RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table, logger: Logger}
}

func (l *RepoLogger) log(ctx context.Context, lvl slog.Level, msg, operation string, fields map[string]any) {
	attrs := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.Log(ctx, lvl, msg, attrs...)
}

// LogCreate logs a create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "repository create", "create", fields)
}

// LogDelete logs a delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "repository delete", "delete", fields)
}

// LogError logs a failed operation and records it on the active span.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	RecordErrorInContext(ctx, err)
	l.log(ctx, slog.LevelError, "repository error", operation, map[string]any{"error": err.Error()})
}
