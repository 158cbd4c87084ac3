package bimsync

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// linkedBudget builds a schedule with one chapter holding two cost items
// linked to external elements and one manual item without a link.
func linkedBudget(t *testing.T) (*schedule.Schedule, map[string]string) {
	t.Helper()
	s := schedule.New(schedule.WithName("Verbouwing"))
	ids := map[string]string{}

	ch := domain.NewChapter("Ruwbouw", domain.Code{Primary: "02"})
	wall := domain.NewCostItem("Binnenwand", domain.Code{Primary: "02.01"}, dec("42.5"), dec("85"), domain.QuantityArea)
	wall.ExternalRef = "ifc-wall-1"
	floor := domain.NewCostItem("Vloer", domain.Code{Primary: "02.02"}, dec("120"), dec("31.50"), domain.QuantityArea)
	floor.ExternalRef = "ifc-floor-1"
	manual := domain.NewCostItem("Stelposten", domain.Code{Primary: "02.03"}, dec("1"), dec("2500"), domain.QuantityCount)

	require.NoError(t, s.Apply(schedule.Insert(s.RootID(), -1, ch)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, wall)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, floor)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, manual)))

	ids["ch"], ids["wall"], ids["floor"], ids["manual"] = ch.ID, wall.ID, floor.ID, manual.ID
	return s, ids
}

func TestReconcile_UpdateCreateOrphan(t *testing.T) {
	s, ids := linkedBudget(t)

	report, err := Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("48.2"), QuantityType: domain.QuantityArea},
		{ExternalID: "ifc-beam-1", Quantity: dec("14"), Hint: "02.04", Description: "Stalen ligger"},
		// ifc-floor-1 is absent from the source
	})
	require.NoError(t, err)
	assert.Equal(t, Report{Updated: 1, Created: 1, Orphaned: 1}, report)

	wall, _ := s.Node(ids["wall"])
	assert.True(t, wall.Quantity.Equal(dec("48.2")))
	assert.True(t, wall.UnitPrice.Equal(dec("85")), "price is never touched")
	assert.Equal(t, "Binnenwand", wall.Description.Plain(), "description is never touched")

	floor, _ := s.Node(ids["floor"])
	assert.True(t, floor.Orphaned, "vanished element marks the item, never deletes it")
	assert.True(t, floor.Quantity.Equal(dec("120")))

	created, ok := s.NodeByExternalRef("ifc-beam-1")
	require.True(t, ok)
	assert.Equal(t, domain.KindCostItem, created.Kind)
	assert.True(t, created.CodeFlagged, "provisional code needs review")
	assert.Equal(t, "02.04", created.Code.Primary)
	assert.True(t, created.Quantity.Equal(dec("14")))
	assert.True(t, created.UnitPrice.IsZero())

	staging, _ := s.Node(created.Parent)
	assert.Equal(t, StagingChapterName, staging.Description.Plain())
}

func TestReconcile_SingleUndoUnit(t *testing.T) {
	s, ids := linkedBudget(t)
	before := s.DumpState()
	depth := s.UndoDepth()

	_, err := Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("50")},
		{ExternalID: "ifc-beam-1", Quantity: dec("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, depth+1, s.UndoDepth(), "whole run is one undo entry")

	require.NoError(t, s.Undo())
	assert.Equal(t, before.Nodes, s.DumpState().Nodes)

	require.NoError(t, s.Redo())
	wall, _ := s.Node(ids["wall"])
	assert.True(t, wall.Quantity.Equal(dec("50")))
	_, ok := s.NodeByExternalRef("ifc-beam-1")
	assert.True(t, ok)
}

func TestReconcile_ConflictRejectsWholeRun(t *testing.T) {
	s, ids := linkedBudget(t)
	before := s.DumpState()
	depth := s.UndoDepth()

	report, err := Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("99")},
		{ExternalID: "ifc-dup", Quantity: dec("1")},
		{ExternalID: "ifc-dup", Quantity: dec("2")},
	})
	require.ErrorIs(t, err, schedule.ErrSynchronizationConflict)
	assert.Equal(t, 1, report.Conflicts)
	assert.Zero(t, report.Updated)

	assert.Equal(t, before.Nodes, s.DumpState().Nodes, "nothing committed")
	assert.Equal(t, depth, s.UndoDepth())
	wall, _ := s.Node(ids["wall"])
	assert.True(t, wall.Quantity.Equal(dec("42.5")))
}

func TestReconcile_EmptyExternalIDIsConflict(t *testing.T) {
	s, _ := linkedBudget(t)
	_, err := Reconcile(s, []Element{{ExternalID: "", Quantity: dec("1")}})
	assert.ErrorIs(t, err, schedule.ErrSynchronizationConflict)
}

func TestReconcile_Idempotent(t *testing.T) {
	s, _ := linkedBudget(t)
	elems := []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("48.2")},
		{ExternalID: "ifc-beam-1", Quantity: dec("14"), Hint: "02.04"},
	}

	first, err := Reconcile(s, elems)
	require.NoError(t, err)
	assert.Equal(t, Report{Updated: 1, Created: 1, Orphaned: 1}, first)
	depth := s.UndoDepth()
	totals := s.Totals()

	second, err := Reconcile(s, elems)
	require.NoError(t, err)
	assert.Equal(t, Report{}, second, "second run changes nothing")
	assert.Equal(t, depth, s.UndoDepth(), "no undo entry for a no-op run")
	assert.True(t, s.Totals().GrandTotal.Equal(totals.GrandTotal))
}

func TestReconcile_ReturningElementClearsOrphan(t *testing.T) {
	s, ids := linkedBudget(t)

	_, err := Reconcile(s, []Element{{ExternalID: "ifc-wall-1", Quantity: dec("42.5")}})
	require.NoError(t, err)
	floor, _ := s.Node(ids["floor"])
	require.True(t, floor.Orphaned)

	report, err := Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("42.5")},
		{ExternalID: "ifc-floor-1", Quantity: dec("120")},
	})
	require.NoError(t, err)
	assert.Equal(t, Report{Updated: 1}, report, "clearing the orphan mark counts as an update")
	floor, _ = s.Node(ids["floor"])
	assert.False(t, floor.Orphaned)
}

func TestReconcile_StagingChapterReused(t *testing.T) {
	s, _ := linkedBudget(t)

	_, err := Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("42.5")},
		{ExternalID: "ifc-floor-1", Quantity: dec("120")},
		{ExternalID: "ifc-a", Quantity: dec("1")},
	})
	require.NoError(t, err)
	_, err = Reconcile(s, []Element{
		{ExternalID: "ifc-wall-1", Quantity: dec("42.5")},
		{ExternalID: "ifc-floor-1", Quantity: dec("120")},
		{ExternalID: "ifc-a", Quantity: dec("1")},
		{ExternalID: "ifc-b", Quantity: dec("2")},
	})
	require.NoError(t, err)

	count := 0
	for _, c := range s.Children(s.RootID()) {
		if c.Description.Plain() == StagingChapterName {
			count++
		}
	}
	assert.Equal(t, 1, count, "later runs reuse the staging chapter")
}
