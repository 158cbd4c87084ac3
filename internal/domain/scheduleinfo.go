package domain

import "time"

// ProjectMeta is the host-supplied project metadata record. The engine
// stores and round-trips it but never interprets the keys.
type ProjectMeta map[string]string

// ScheduleInfo is the document-level metadata of a cost schedule.
type ScheduleInfo struct {
	ID          string
	Name        string
	Description string
	Type        ScheduleType
	Status      ScheduleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
