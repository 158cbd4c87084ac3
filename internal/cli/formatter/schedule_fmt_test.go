package formatter

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

func renderFixture(t *testing.T) string {
	t.Helper()
	s := schedule.New(schedule.WithName("Testbegroting"))
	ch := domain.NewChapter("Fundering", domain.Code{Primary: "01"})
	item := domain.NewCostItem("Grondwerk", domain.Code{Primary: "01.01"}, dec("120"), dec("12.50"), domain.QuantityVolume)
	note := domain.NewTextLine("Inclusief afvoer")
	orphan := domain.NewCostItem("Vloer", domain.Code{Primary: "01.02"}, dec("10"), dec("5"), domain.QuantityArea)
	require.NoError(t, s.Apply(schedule.Insert(s.RootID(), -1, ch)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, item)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, note)))
	require.NoError(t, s.Apply(schedule.Insert(ch.ID, -1, orphan)))
	require.NoError(t, s.Apply(schedule.Edit(orphan.ID, schedule.SetOrphaned(true))))
	return RenderSchedule(s.Snapshot())
}

func TestRenderSchedule_ShowsTreeAndTotals(t *testing.T) {
	out := renderFixture(t)

	assert.Contains(t, out, "TESTBEGROTING")
	assert.Contains(t, out, "Fundering")
	assert.Contains(t, out, treeBranch)
	assert.Contains(t, out, treeCorner)
	assert.Contains(t, out, "120 m³ × € 12.50")
	assert.Contains(t, out, "Subtotaal")
	assert.Contains(t, out, "BTW (21%)")
	assert.Contains(t, out, "Totaal incl. BTW")
	assert.Contains(t, out, "(vervallen in BIM)")
}

func TestRenderSchedule_NoSurchargeLinesByDefault(t *testing.T) {
	out := RenderSchedule(schedule.New().Snapshot())
	assert.NotContains(t, out, "Algemene kosten")
	assert.NotContains(t, out, "Winst en risico")
}

func TestRenderScheduleList(t *testing.T) {
	out := RenderScheduleList(nil)
	assert.Contains(t, out, "Geen opgeslagen begrotingen")

	out = RenderScheduleList([]domain.ScheduleInfo{
		{ID: "0d9c2a1e-1111-2222-3333-444455556666", Name: "Woning", Type: domain.ScheduleBudget, Status: domain.StatusDraft},
	})
	assert.Contains(t, out, "0d9c2a1e")
	assert.Contains(t, out, "Woning")
	assert.Contains(t, out, "budget")
}
