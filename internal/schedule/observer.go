package schedule

import (
	"io"
	"log/slog"
	"time"
)

// CommandEvent captures lightweight execution telemetry for one command.
type CommandEvent struct {
	Op       Op
	Label    string
	NodeID   string
	Duration time.Duration
	Err      error
}

// Observer receives command execution events.
type Observer interface {
	ObserveCommand(event CommandEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveCommand(CommandEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes command events to the provided writer as slog
// text lines.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObserveCommand(event CommandEvent) {
	attrs := []any{
		"op", string(event.Op),
		"label", event.Label,
		"duration_us", event.Duration.Microseconds(),
	}
	if event.NodeID != "" {
		attrs = append(attrs, "node", event.NodeID)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("schedule_command", attrs...)
		return
	}
	o.logger.Info("schedule_command", attrs...)
}

func (s *Schedule) observe(cmd *Command, start time.Time, err error) {
	s.observer.ObserveCommand(CommandEvent{
		Op:       cmd.Op,
		Label:    cmd.Label,
		NodeID:   cmd.NodeID,
		Duration: time.Since(start),
		Err:      err,
	})
}
