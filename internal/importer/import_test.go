package importer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestImport_GroupsByCodePrefix(t *testing.T) {
	s := schedule.New()
	records := []Record{
		{Code: "01", Description: "Fundering"},
		{Code: "01.01", Description: "Grondwerk", Quantity: decPtr("120"), UnitPrice: decPtr("12.50"), QuantityType: domain.QuantityVolume},
		{Code: "01.02", Description: "Heipalen", Quantity: decPtr("24"), UnitPrice: decPtr("310")},
		{Description: "Inclusief afvoer grond"},
		{Code: "02", Description: "Ruwbouw"},
		{Code: "02.01", Description: "Kalkzandsteen", Quantity: decPtr("64"), UnitPrice: decPtr("48.75"), QuantityType: domain.QuantityArea},
	}

	summary, err := Import(s, records)
	require.NoError(t, err)
	assert.Equal(t, Summary{Chapters: 2, CostItems: 3, TextLines: 1}, summary)

	snap := s.Snapshot()
	require.Len(t, snap.Rows, 6)
	assert.Equal(t, "01", snap.Rows[0].Code)
	assert.Equal(t, 0, snap.Rows[0].Level)
	assert.Equal(t, "01.01", snap.Rows[1].Code)
	assert.Equal(t, 1, snap.Rows[1].Level)
	assert.Equal(t, "Inclusief afvoer grond", snap.Rows[3].Description)
	assert.Equal(t, 1, snap.Rows[3].Level, "codeless record stays in its predecessor's chapter")
	assert.Equal(t, "02", snap.Rows[4].Code)
	assert.Equal(t, 0, snap.Rows[4].Level)

	// 120*12.50 + 24*310 + 64*48.75 = 1500 + 7440 + 3120 = 12060
	assert.True(t, snap.Totals.Subtotal.Equal(decimal.RequireFromString("12060")))
}

func TestImport_DeepPrefixSkipsMissingLevels(t *testing.T) {
	s := schedule.New()
	records := []Record{
		{Code: "01", Description: "Installaties"},
		{Code: "01.02.03", Description: "Wandcontactdozen", Quantity: decPtr("46"), UnitPrice: decPtr("11.20")},
	}
	_, err := Import(s, records)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, 1, snap.Rows[1].Level, "01 is the nearest existing prefix ancestor")
}

func TestImport_SingleUndoUnit(t *testing.T) {
	s := schedule.New()
	_, err := Import(s, []Record{
		{Code: "01", Description: "Fundering"},
		{Code: "01.01", Description: "Grondwerk", Quantity: decPtr("1"), UnitPrice: decPtr("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.UndoDepth())

	require.NoError(t, s.Undo())
	assert.Empty(t, s.Snapshot().Rows)
}

func TestImport_CodeCollisionFlagsSecond(t *testing.T) {
	s := schedule.New()
	summary, err := Import(s, []Record{
		{Code: "01", Description: "Fundering"},
		{Code: "01", Description: "Fundering (dubbel)"},
		{Code: "01.01", Description: "Grondwerk", Quantity: decPtr("1"), UnitPrice: decPtr("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Flagged, "collision flags, never rejects")

	snap := s.Snapshot()
	require.Len(t, snap.Rows, 3)

	var first, dup, item *schedule.Row
	for i := range snap.Rows {
		switch snap.Rows[i].Description {
		case "Fundering":
			first = &snap.Rows[i]
		case "Fundering (dubbel)":
			dup = &snap.Rows[i]
		case "Grondwerk":
			item = &snap.Rows[i]
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, dup)
	require.NotNil(t, item)

	assert.False(t, first.CodeFlagged)
	assert.True(t, dup.CodeFlagged, "second claimant of the code is flagged")
	assert.Equal(t, "01.01", item.Code)
	assert.Equal(t, first.ID, mustNode(t, s, item.ID).Parent,
		"children group under the first claimant")
}

func TestImport_MalformedCodeFlagged(t *testing.T) {
	s := schedule.New()
	summary, err := Import(s, []Record{
		{Code: "1a.b", Description: "Onleesbaar", Quantity: decPtr("1"), UnitPrice: decPtr("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Flagged)

	snap := s.Snapshot()
	assert.True(t, snap.Rows[0].CodeFlagged)
	assert.Equal(t, "1a.b", snap.Rows[0].Code, "malformed code is stored as-is")
}

func TestImport_InvalidRecordsRejectWholeSet(t *testing.T) {
	s := schedule.New()
	_, err := Import(s, []Record{
		{Code: "01", Description: "Fundering"},
		{Code: "01.01", Description: ""},
	})
	require.ErrorIs(t, err, ErrInvalidRecords)
	assert.Empty(t, s.Snapshot().Rows, "nothing imported")
	assert.Zero(t, s.UndoDepth())
}

func TestValidateRecords_DuplicateExternalRef(t *testing.T) {
	errs := ValidateRecords([]Record{
		{Description: "a", ExternalRef: "ifc-1", Quantity: decPtr("1")},
		{Description: "b", ExternalRef: "ifc-1", Quantity: decPtr("2")},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "ifc-1")
}

func TestValidateRecords_BadQuantityType(t *testing.T) {
	errs := ValidateRecords([]Record{
		{Description: "a", Quantity: decPtr("1"), QuantityType: "lichtjaar"},
	})
	require.Len(t, errs, 1)
}

func TestLoadRecords_RoundTrip(t *testing.T) {
	records := []Record{
		{Code: "01", Description: "Fundering"},
		{Code: "01.01", Description: "Grondwerk", Quantity: decPtr("120"), UnitPrice: decPtr("12.50"), QuantityType: domain.QuantityVolume, ExternalRef: "ifc-1"},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Grondwerk", loaded[1].Description)
	assert.True(t, loaded[1].Quantity.Equal(decimal.RequireFromString("120")))
	assert.Equal(t, domain.QuantityVolume, loaded[1].QuantityType)
}

func mustNode(t *testing.T, s *schedule.Schedule, id string) domain.CostNode {
	t.Helper()
	n, ok := s.Node(id)
	require.True(t, ok)
	return n
}
