package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

func buildSmallBudget(t *testing.T) (*Schedule, map[string]string) {
	t.Helper()
	s := New(WithName("Woning"))
	ids := map[string]string{}

	ch1 := domain.NewChapter("Fundering", domain.Code{Primary: "01"})
	ch2 := domain.NewChapter("Ruwbouw", domain.Code{Primary: "02"})
	i1 := domain.NewCostItem("Grondwerk", domain.Code{Primary: "01.01"}, dec("120"), dec("12.50"), domain.QuantityVolume)
	i2 := domain.NewCostItem("Heipalen", domain.Code{Primary: "01.02"}, dec("24"), dec("310"), domain.QuantityCount)
	note := domain.NewTextLine("Inclusief afvoer grond")

	require.NoError(t, s.Apply(Insert(s.RootID(), -1, ch1)))
	require.NoError(t, s.Apply(Insert(s.RootID(), -1, ch2)))
	require.NoError(t, s.Apply(Insert(ch1.ID, -1, i1)))
	require.NoError(t, s.Apply(Insert(ch1.ID, -1, i2)))
	require.NoError(t, s.Apply(Insert(ch1.ID, -1, note)))

	ids["ch1"], ids["ch2"], ids["i1"], ids["i2"], ids["note"] = ch1.ID, ch2.ID, i1.ID, i2.ID, note.ID
	return s, ids
}

func TestSnapshot_DocumentOrderAndLevels(t *testing.T) {
	s, ids := buildSmallBudget(t)
	snap := s.Snapshot()

	require.Len(t, snap.Rows, 5)
	assert.Equal(t, ids["ch1"], snap.Rows[0].ID)
	assert.Equal(t, ids["i1"], snap.Rows[1].ID)
	assert.Equal(t, ids["i2"], snap.Rows[2].ID)
	assert.Equal(t, ids["note"], snap.Rows[3].ID)
	assert.Equal(t, ids["ch2"], snap.Rows[4].ID)

	assert.Equal(t, 0, snap.Rows[0].Level)
	assert.Equal(t, 1, snap.Rows[1].Level)
	assert.True(t, snap.Rows[3].IsLast, "note is the last child of chapter 01")
	assert.True(t, snap.Rows[4].IsLast)
	assert.False(t, snap.Rows[0].IsLast)
}

func TestSnapshot_TotalsConsistent(t *testing.T) {
	s, _ := buildSmallBudget(t)
	snap := s.Snapshot()

	// 120*12.50 + 24*310 = 1500 + 7440 = 8940
	assert.True(t, snap.Totals.Subtotal.Equal(dec("8940")))
	assert.True(t, snap.Rows[0].LineTotal.Equal(dec("8940")), "chapter row carries its subtree total")
	assert.True(t, snap.Totals.Tax.Equal(dec("1877.40")))
	assert.True(t, snap.Totals.GrandTotal.Equal(dec("10817.40")))
}

func TestSnapshot_IsolatedFromLaterEdits(t *testing.T) {
	s, ids := buildSmallBudget(t)
	snap := s.Snapshot()

	require.NoError(t, s.Apply(Edit(ids["i1"], SetQuantity(dec("999")))))
	assert.True(t, snap.Rows[1].Quantity.Equal(dec("120")), "snapshot must not track later edits")
}

func TestDescendants_DocumentOrderAndRestartable(t *testing.T) {
	s, ids := buildSmallBudget(t)

	collect := func() []string {
		var out []string
		for n := range s.Descendants(s.RootID()) {
			out = append(out, n.ID)
		}
		return out
	}

	want := []string{ids["ch1"], ids["i1"], ids["i2"], ids["note"], ids["ch2"]}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect(), "sequence restarts from the beginning")
}

func TestDescendants_EarlyStop(t *testing.T) {
	s, _ := buildSmallBudget(t)
	count := 0
	for range s.Descendants(s.RootID()) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestAncestors_NearestFirst(t *testing.T) {
	s, ids := buildSmallBudget(t)
	anc := s.Ancestors(ids["i1"])
	require.Len(t, anc, 2)
	assert.Equal(t, ids["ch1"], anc[0].ID)
	assert.Equal(t, s.RootID(), anc[1].ID)
}
