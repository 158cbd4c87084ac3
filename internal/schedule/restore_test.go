package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

func TestRestore_RoundTrip(t *testing.T) {
	s, ids := buildSmallBudget(t)
	require.NoError(t, s.Apply(EditDocument(DocEdit{
		TaxRate:      decPtr("9"),
		OverheadRate: decPtr("8"),
	})))

	state := s.DumpState()
	restored, err := Restore(state)
	require.NoError(t, err)

	assertStateEqual(t, state, restored.DumpState())
	assert.True(t, restored.TaxRate().Equal(dec("9")))
	assert.True(t, restored.SurchargeRates().OverheadRate.Equal(dec("8")))
	assert.True(t, restored.Totals().GrandTotal.Equal(s.Totals().GrandTotal))
	assert.Equal(t, 0, restored.UndoDepth(), "undo history does not persist")

	// The restored document accepts new commands.
	require.NoError(t, restored.Apply(Edit(ids["i1"], SetQuantity(dec("1")))))
}

func TestRestore_RecomputesStaleTotals(t *testing.T) {
	s, _ := buildSmallBudget(t)
	state := s.DumpState()
	for _, n := range state.Nodes {
		n.LineTotal = dec("12345") // persisted totals are not trusted
	}

	restored, err := Restore(state)
	require.NoError(t, err)
	assert.True(t, restored.Totals().Subtotal.Equal(dec("8940")))
	checkConsistent(t, restored)
}

func TestRestore_RejectsBrokenTrees(t *testing.T) {
	s, ids := buildSmallBudget(t)

	t.Run("dangling child", func(t *testing.T) {
		state := s.DumpState()
		state.Nodes = state.Nodes[:len(state.Nodes)-1] // drop ch2, still referenced by root
		_, err := Restore(state)
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		state := s.DumpState()
		state.Nodes = append(state.Nodes, state.Nodes[1].Clone())
		_, err := Restore(state)
		assert.Error(t, err)
	})

	t.Run("parent link mismatch", func(t *testing.T) {
		state := s.DumpState()
		for _, n := range state.Nodes {
			if n.ID == ids["i1"] {
				n.Parent = ids["ch2"]
			}
		}
		_, err := Restore(state)
		assert.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		state := s.DumpState()
		state.RootID = "gone"
		_, err := Restore(state)
		assert.Error(t, err)
	})
}

func TestRestore_PreservesExternalRefs(t *testing.T) {
	s, ids := buildSmallBudget(t)
	require.NoError(t, s.Apply(Edit(ids["i1"], SetExternalRef("ifc-42"))))

	restored, err := Restore(s.DumpState())
	require.NoError(t, err)
	n, ok := restored.NodeByExternalRef("ifc-42")
	require.True(t, ok)
	assert.Equal(t, ids["i1"], n.ID)

	dup := domain.NewCostItem("dubbel", domain.Code{}, dec("1"), dec("1"), "")
	dup.ExternalRef = "ifc-42"
	err = restored.Apply(Insert(restored.RootID(), -1, dup))
	assert.ErrorIs(t, err, ErrInvalidMutation, "ref uniqueness survives restore")
}
