package logging

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON on stdout at info level, tagged with
// the service name so replicas behind the balancer stay distinguishable.
func New(service string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h).With("service", service)
}
