package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewCostItem_Defaults(t *testing.T) {
	n := NewCostItem("kozijnen", Code{Primary: "24.01", SFB: "31.2"}, dec("12"), dec("450"), "")

	require.NotEmpty(t, n.ID)
	assert.Equal(t, KindCostItem, n.Kind)
	assert.Equal(t, QuantityCount, n.QuantityType, "empty quantity type defaults to count")
	assert.Equal(t, "kozijnen", n.Description.Plain())
	assert.Equal(t, "31.2", n.Code.SFB)
}

func TestNewNodes_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewTextLine("note")
		require.False(t, seen[n.ID], "duplicate node id")
		seen[n.ID] = true
	}
}

func TestClone_Independent(t *testing.T) {
	n := NewChapter("ruwbouw", Code{Primary: "02"})
	n.Children = []string{"a", "b"}
	n.Description = StyledText{{Text: "ruw", Bold: true}, {Text: "bouw"}}

	c := n.Clone()
	c.Children[0] = "x"
	c.Description[0].Text = "changed"

	assert.Equal(t, "a", n.Children[0])
	assert.Equal(t, "ruw", n.Description[0].Text)
	assert.Equal(t, n.ID, c.ID, "clone keeps identity")
}

func TestStyledText_PlainAndEqual(t *testing.T) {
	s := StyledText{{Text: "let ", Bold: true}, {Text: "op", Color: "#cc0000"}}
	assert.Equal(t, "let op", s.Plain())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(PlainText("let op")))
	assert.Equal(t, "", StyledText(nil).Plain())
}

func TestQuantityType_Units(t *testing.T) {
	assert.Equal(t, "m²", QuantityArea.UnitSymbol())
	assert.Equal(t, "stuks", QuantityCount.UnitName())
	assert.Equal(t, "", QuantityType("bogus").UnitSymbol())
}
