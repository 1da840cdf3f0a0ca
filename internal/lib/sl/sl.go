package sl

import "log/slog"

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Module tags log records with the component they came from.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

// Secret logs only the tail of a sensitive value.
func Secret(key, value string) slog.Attr {
	masked := "****"
	if n := len(value); n > 4 {
		masked = "****" + value[n-4:]
	}
	return slog.String(key, masked)
}
