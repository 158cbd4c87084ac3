// Package cli implements the bouwkost command-line interface on top of
// the schedule engine and the SQLite store.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/bouwkost/internal/config"
	"github.com/alexanderramin/bouwkost/internal/repository"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// App holds everything CLI commands need: the store, document defaults,
// and the output stream.
type App struct {
	Store    repository.ScheduleStore
	Defaults config.DefaultsConfig
	Out      io.Writer
	Observer schedule.Observer
}

func (a *App) observer() schedule.Observer {
	if a.Observer == nil {
		return schedule.NoopObserver{}
	}
	return a.Observer
}

// resolveScheduleID maps user input to a stored schedule id: an exact id
// match first, then a unique id prefix, then a unique case-insensitive
// name match.
func resolveScheduleID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("schedule id is required")
	}

	infos, err := app.Store.List(ctx)
	if err != nil {
		return "", err
	}

	for _, info := range infos {
		if info.ID == input {
			return info.ID, nil
		}
	}

	var matches []string
	for _, info := range infos {
		if strings.HasPrefix(info.ID, input) {
			matches = append(matches, info.ID)
		}
	}
	if len(matches) == 0 {
		for _, info := range infos {
			if strings.EqualFold(info.Name, input) {
				matches = append(matches, info.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("schedule not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("schedule %q is ambiguous (%d matches)", input, len(matches))
	}
}

// loadSchedule resolves the input and rebuilds a live document.
func loadSchedule(ctx context.Context, app *App, input string) (*schedule.Schedule, error) {
	id, err := resolveScheduleID(ctx, app, input)
	if err != nil {
		return nil, err
	}
	state, err := app.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return schedule.Restore(state, schedule.WithObserver(app.observer()))
}
