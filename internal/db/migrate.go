package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Decimal columns are stored as TEXT: amounts round-trip exactly and
// never pass through floating point.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT 'budget'
		                 CHECK(type IN ('budget','costplan','estimate','tender',
		                                'priced_boq','unpriced_boq','schedule_of_rates')),
		status           TEXT NOT NULL DEFAULT 'draft'
		                 CHECK(status IN ('draft','approved','submitted','rejected')),
		tax_rate         TEXT NOT NULL DEFAULT '21',
		overhead_rate    TEXT NOT NULL DEFAULT '0',
		profit_risk_rate TEXT NOT NULL DEFAULT '0',
		root_id          TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS schedule_meta (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		PRIMARY KEY (schedule_id, key)
	)`,

	`CREATE TABLE IF NOT EXISTS cost_nodes (
		schedule_id   TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		id            TEXT NOT NULL,
		parent_id     TEXT NOT NULL DEFAULT '',
		position      INTEGER NOT NULL DEFAULT 0,
		kind          TEXT NOT NULL
		              CHECK(kind IN ('chapter','cost_item','text_line')),
		primary_code  TEXT NOT NULL DEFAULT '',
		sfb_code      TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '[]',
		quantity      TEXT NOT NULL DEFAULT '0',
		quantity_type TEXT NOT NULL DEFAULT '',
		unit_price    TEXT NOT NULL DEFAULT '0',
		line_total    TEXT NOT NULL DEFAULT '0',
		external_ref  TEXT NOT NULL DEFAULT '',
		orphaned      INTEGER NOT NULL DEFAULT 0,
		code_flagged  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (schedule_id, id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cost_nodes_parent ON cost_nodes(schedule_id, parent_id, position)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cost_nodes_external_ref
		ON cost_nodes(schedule_id, external_ref) WHERE external_ref != ''`,
}
