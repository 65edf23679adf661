package config

import (
	"log/slog"
	"os"
)

// InitLogger installs a JSON slog handler as the default logger.
// Production keeps the plain handler; every other environment adds
// source locations and local timestamps for readability.
func InitLogger() {
	var handler slog.Handler

	if os.Getenv("ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			AddSource:   true,
			ReplaceAttr: replaceTimeAttr,
		})
	}

	slog.SetDefault(slog.New(handler))
}

func replaceTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String("time", a.Value.Time().Local().Format("2006-01-02 15:04:05"))
	}
	return a
}
