package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyView       = "view"
	KeyOutput     = "output"
	KeySlug       = "slug"
	KeyModel      = "model"
	KeyController = "controller"
	KeyRunCount   = "run_count"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func View(v string) slog.Attr { return slog.String(KeyView, v) }
func Output(p string) slog.Attr { return slog.String(KeyOutput, p) }
func Slug(s string) slog.Attr { return slog.String(KeySlug, s) }
func Model(m string) slog.Attr { return slog.String(KeyModel, m) }
func Controller(c string) slog.Attr { return slog.String(KeyController, c) }
func RunCount(n int64) slog.Attr { return slog.Int64(KeyRunCount, n) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr { return slog.String(KeyURL, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ShortView trims inline template text so it stays readable in a log line.
func ShortView(view string) slog.Attr {
	const maxLen = 48
	if len(view) > maxLen {
		view = view[:maxLen] + "..."
	}
	return slog.String(KeyView, view)
}
