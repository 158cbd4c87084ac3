// Package repository persists cost schedules in SQLite. A schedule is
// stored as its restore state: the document row, its metadata record,
// and every tree node with its parent link and sibling position. Undo
// history is not persisted.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/bouwkost/internal/db"
	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// ErrScheduleNotFound reports a load or delete for an unknown schedule id.
var ErrScheduleNotFound = errors.New("schedule not found")

// SQLiteScheduleStore implements ScheduleStore using a SQLite database.
// Saves run in a single transaction; a failed save leaves the previous
// version intact.
type SQLiteScheduleStore struct {
	db  *sql.DB
	uow db.UnitOfWork
}

// NewSQLiteScheduleStore creates a store backed by the given database.
func NewSQLiteScheduleStore(sqlDB *sql.DB) *SQLiteScheduleStore {
	return &SQLiteScheduleStore{db: sqlDB, uow: db.NewSQLiteUnitOfWork(sqlDB)}
}

// Save writes the full schedule state, replacing any stored version with
// the same id.
func (st *SQLiteScheduleStore) Save(ctx context.Context, state schedule.RestoreState) error {
	return st.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := upsertScheduleRow(ctx, tx, state); err != nil {
			return err
		}
		if err := replaceMeta(ctx, tx, state.Info.ID, state.Meta); err != nil {
			return err
		}
		return replaceNodes(ctx, tx, state.Info.ID, state.Nodes)
	})
}

// Load reads a stored schedule state by document id.
func (st *SQLiteScheduleStore) Load(ctx context.Context, id string) (schedule.RestoreState, error) {
	var state schedule.RestoreState

	row := st.db.QueryRowContext(ctx, `SELECT id, name, description, type, status,
		tax_rate, overhead_rate, profit_risk_rate, root_id, created_at, updated_at
		FROM schedules WHERE id = ?`, id)

	var taxRate, overhead, profitRisk, createdAt, updatedAt string
	err := row.Scan(&state.Info.ID, &state.Info.Name, &state.Info.Description,
		&state.Info.Type, &state.Info.Status,
		&taxRate, &overhead, &profitRisk, &state.RootID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
	}
	if err != nil {
		return state, fmt.Errorf("loading schedule %s: %w", id, err)
	}
	state.Info.CreatedAt = parseTime(createdAt)
	state.Info.UpdatedAt = parseTime(updatedAt)

	if state.TaxRate, err = parseDecimal("tax_rate", taxRate); err != nil {
		return state, err
	}
	if state.Surcharges.OverheadRate, err = parseDecimal("overhead_rate", overhead); err != nil {
		return state, err
	}
	if state.Surcharges.ProfitRiskRate, err = parseDecimal("profit_risk_rate", profitRisk); err != nil {
		return state, err
	}

	if state.Meta, err = loadMeta(ctx, st.db, id); err != nil {
		return state, err
	}
	if state.Nodes, err = loadNodes(ctx, st.db, id); err != nil {
		return state, err
	}
	return state, nil
}

// List returns document metadata for every stored schedule, oldest first.
func (st *SQLiteScheduleStore) List(ctx context.Context) ([]domain.ScheduleInfo, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT id, name, description, type, status, created_at, updated_at
		FROM schedules ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	defer rows.Close()

	var infos []domain.ScheduleInfo
	for rows.Next() {
		var info domain.ScheduleInfo
		var createdAt, updatedAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &info.Type, &info.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		info.UpdatedAt = parseTime(updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return infos, nil
}

// Delete removes a stored schedule and all its rows.
func (st *SQLiteScheduleStore) Delete(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting schedule %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
	}
	return nil
}

func upsertScheduleRow(ctx context.Context, tx db.DBTX, state schedule.RestoreState) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO schedules
		(id, name, description, type, status, tax_rate, overhead_rate, profit_risk_rate, root_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			type = excluded.type,
			status = excluded.status,
			tax_rate = excluded.tax_rate,
			overhead_rate = excluded.overhead_rate,
			profit_risk_rate = excluded.profit_risk_rate,
			root_id = excluded.root_id,
			updated_at = excluded.updated_at`,
		state.Info.ID,
		state.Info.Name,
		state.Info.Description,
		string(state.Info.Type),
		string(state.Info.Status),
		state.TaxRate.String(),
		state.Surcharges.OverheadRate.String(),
		state.Surcharges.ProfitRiskRate.String(),
		state.RootID,
		state.Info.CreatedAt.UTC().Format(time.RFC3339),
		state.Info.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting schedule row: %w", err)
	}
	return nil
}

func replaceMeta(ctx context.Context, tx db.DBTX, scheduleID string, meta domain.ProjectMeta) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_meta WHERE schedule_id = ?`, scheduleID); err != nil {
		return fmt.Errorf("clearing schedule meta: %w", err)
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_meta (schedule_id, key, value) VALUES (?, ?, ?)`,
			scheduleID, k, v); err != nil {
			return fmt.Errorf("inserting meta key %q: %w", k, err)
		}
	}
	return nil
}

func replaceNodes(ctx context.Context, tx db.DBTX, scheduleID string, nodes []*domain.CostNode) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cost_nodes WHERE schedule_id = ?`, scheduleID); err != nil {
		return fmt.Errorf("clearing cost nodes: %w", err)
	}

	// Sibling position derives from each parent's child order.
	positions := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for i, cid := range n.Children {
			positions[cid] = i
		}
	}

	for _, n := range nodes {
		desc, err := json.Marshal(n.Description)
		if err != nil {
			return fmt.Errorf("encoding description of node %s: %w", n.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO cost_nodes
			(schedule_id, id, parent_id, position, kind, primary_code, sfb_code,
			 description, quantity, quantity_type, unit_price, line_total,
			 external_ref, orphaned, code_flagged)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scheduleID,
			n.ID,
			n.Parent,
			positions[n.ID],
			string(n.Kind),
			n.Code.Primary,
			n.Code.SFB,
			string(desc),
			n.Quantity.String(),
			string(n.QuantityType),
			n.UnitPrice.String(),
			n.LineTotal.String(),
			n.ExternalRef,
			boolToInt(n.Orphaned),
			boolToInt(n.CodeFlagged),
		); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}
	return nil
}

func loadMeta(ctx context.Context, q db.DBTX, scheduleID string) (domain.ProjectMeta, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM schedule_meta WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule meta: %w", err)
	}
	defer rows.Close()

	meta := domain.ProjectMeta{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta row: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meta rows: %w", err)
	}
	return meta, nil
}

func loadNodes(ctx context.Context, q db.DBTX, scheduleID string) ([]*domain.CostNode, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, parent_id, position, kind, primary_code, sfb_code,
		description, quantity, quantity_type, unit_price, line_total, external_ref, orphaned, code_flagged
		FROM cost_nodes WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading cost nodes: %w", err)
	}
	defer rows.Close()

	type placed struct {
		node     *domain.CostNode
		position int
	}
	var nodes []*domain.CostNode
	children := map[string][]placed{}

	for rows.Next() {
		n := &domain.CostNode{}
		var position, orphaned, flagged int
		var kind, qtyType, desc, quantity, unitPrice, lineTotal string
		if err := rows.Scan(&n.ID, &n.Parent, &position, &kind, &n.Code.Primary, &n.Code.SFB,
			&desc, &quantity, &qtyType, &unitPrice, &lineTotal, &n.ExternalRef, &orphaned, &flagged); err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		n.Kind = domain.NodeKind(kind)
		n.QuantityType = domain.QuantityType(qtyType)
		n.Orphaned = intToBool(orphaned)
		n.CodeFlagged = intToBool(flagged)
		if err := json.Unmarshal([]byte(desc), &n.Description); err != nil {
			return nil, fmt.Errorf("decoding description of node %s: %w", n.ID, err)
		}
		if n.Quantity, err = parseDecimal("quantity", quantity); err != nil {
			return nil, err
		}
		if n.UnitPrice, err = parseDecimal("unit_price", unitPrice); err != nil {
			return nil, err
		}
		if n.LineTotal, err = parseDecimal("line_total", lineTotal); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		if n.Parent != "" {
			children[n.Parent] = append(children[n.Parent], placed{node: n, position: position})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}

	// Rebuild each child list in sibling order.
	for _, n := range nodes {
		kids := children[n.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].position < kids[j].position })
		for _, k := range kids {
			n.Children = append(n.Children, k.node.ID)
		}
	}
	return nodes, nil
}
