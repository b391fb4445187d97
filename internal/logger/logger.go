package logger

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// Fields represents structured log fields
type Fields map[string]interface{}

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var threshold atomic.Int32

func init() {
	threshold.Store(int32(LevelInfo))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Unknown
// names give LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// SetLevel sets the minimum level that gets printed. Breadcrumbs are sent to
// Sentry regardless.
func SetLevel(l Level) {
	threshold.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) >= threshold.Load()
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	if enabled(LevelDebug) {
		log.Printf("[DEBUG] %s %v", msg, formatFields(fields))
	}
	breadcrumb("debug", msg, fields, sentry.LevelDebug)
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	if enabled(LevelInfo) {
		log.Printf("[INFO] %s %v", msg, formatFields(fields))
	}
	breadcrumb("info", msg, fields, sentry.LevelInfo)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	if enabled(LevelWarn) {
		log.Printf("[WARN] %s %v", msg, formatFields(fields))
	}
	breadcrumb("warning", msg, fields, sentry.LevelWarning)
}

// Error logs an error message with structured fields and sends to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %v", msg, err, formatFields(fields))

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for key, value := range fields {
				scope.SetContext(key, map[string]interface{}{
					"value": value,
				})
			}
			if cmd, ok := fields["command"].(string); ok {
				scope.SetTag("command", cmd)
			}
			hub.CaptureException(err)
		})
	}
}

func breadcrumb(typ, msg string, fields Fields, level sentry.Level) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     typ,
			Category: "log",
			Message:  msg,
			Data:     convertFieldsToMap(fields),
			Level:    level,
		})
	}
}

// formatFields converts Fields to a readable string, keys sorted
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteString("}")
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func convertFieldsToMap(fields Fields) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		result[k] = v
	}
	return result
}
