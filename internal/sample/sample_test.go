package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

func TestBudget_Structure(t *testing.T) {
	s, err := Budget()
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Begroting Nieuwbouw Woning", snap.Info.Name)

	chapters := 0
	for _, r := range snap.Rows {
		if r.Kind == domain.KindChapter {
			chapters++
			assert.Equal(t, 0, r.Level, "sample chapters sit directly under the root")
		} else {
			require.Equal(t, domain.KindCostItem, r.Kind)
			assert.False(t, r.CodeFlagged, "sample codes are well-formed")
			assert.True(t, r.LineTotal.Equal(r.Quantity.Mul(r.UnitPrice)))
		}
	}
	assert.Equal(t, 8, chapters)
	assert.True(t, snap.Totals.Subtotal.IsPositive())
	assert.True(t, snap.Totals.GrandTotal.GreaterThan(snap.Totals.Subtotal), "surcharges and VAT apply")
}

func TestBudget_SingleUndoClearsIt(t *testing.T) {
	s, err := Budget()
	require.NoError(t, err)
	require.Equal(t, 1, s.UndoDepth())
	require.NoError(t, s.Undo())
	assert.Empty(t, s.Snapshot().Rows)
}

func TestBudget_AcceptsOptions(t *testing.T) {
	s, err := Budget(schedule.WithName("Eigen naam"))
	require.NoError(t, err)
	assert.Equal(t, "Eigen naam", s.Info().Name)
}
