package repository

import (
	"context"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// ScheduleStore persists and retrieves cost-schedule documents. The
// stored form is the schedule's restore state; callers rebuild a live
// document with schedule.Restore.
type ScheduleStore interface {
	Save(ctx context.Context, state schedule.RestoreState) error
	Load(ctx context.Context, id string) (schedule.RestoreState, error)
	List(ctx context.Context) ([]domain.ScheduleInfo, error)
	Delete(ctx context.Context, id string) error
}

var _ ScheduleStore = (*SQLiteScheduleStore)(nil)
