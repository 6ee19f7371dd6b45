package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Field names shared by every component so log queries stay stable.
const (
	FieldService  = "service"
	FieldSearchID = "search_id"
	FieldQuery    = "query"
	FieldURL      = "url"
	FieldError    = "error"
	FieldDuration = "duration_ms"
)

func New(level string, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OrDefault returns logger, or slog.Default() when logger is nil.
func OrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

func SearchID(id string) slog.Attr {
	return slog.String(FieldSearchID, id)
}

func Query(query string) slog.Attr {
	return slog.String(FieldQuery, query)
}

func URL(url string) slog.Attr {
	return slog.String(FieldURL, url)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}
