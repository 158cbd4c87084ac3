package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// Row is one node in a snapshot, in document order. Level 0 is a direct
// child of the root; the root itself is not listed.
type Row struct {
	ID           string
	Level        int
	Kind         domain.NodeKind
	Code         string
	SFBCode      string
	Description  string
	Styled       domain.StyledText
	Quantity     decimal.Decimal
	QuantityType domain.QuantityType
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
	ExternalRef  string
	Orphaned     bool
	CodeFlagged  bool
	IsLast       bool // last among its siblings, for tree rendering
}

// Snapshot is a read-only, internally consistent view of the document at
// one instant: the tree in document order plus computed totals. Export
// collaborators consume snapshots only.
type Snapshot struct {
	Info       domain.ScheduleInfo
	Meta       domain.ProjectMeta
	TaxRate    decimal.Decimal
	Surcharges Surcharges
	Rows       []Row
	Totals     Totals
}

// Snapshot produces a consistent view of the whole document.
func (s *Schedule) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Info:       s.info,
		Meta:       make(domain.ProjectMeta, len(s.meta)),
		TaxRate:    s.taxRate,
		Surcharges: s.surcharges,
		Totals:     s.totals,
	}
	for k, v := range s.meta {
		snap.Meta[k] = v
	}

	var walk func(id string, level int)
	walk = func(id string, level int) {
		n := s.nodes[id]
		for i, cid := range n.Children {
			c := s.nodes[cid]
			snap.Rows = append(snap.Rows, Row{
				ID:           c.ID,
				Level:        level,
				Kind:         c.Kind,
				Code:         c.Code.Primary,
				SFBCode:      c.Code.SFB,
				Description:  c.Description.Plain(),
				Styled:       c.Description.Clone(),
				Quantity:     c.Quantity,
				QuantityType: c.QuantityType,
				UnitPrice:    c.UnitPrice,
				LineTotal:    c.LineTotal,
				ExternalRef:  c.ExternalRef,
				Orphaned:     c.Orphaned,
				CodeFlagged:  c.CodeFlagged,
				IsLast:       i == len(n.Children)-1,
			})
			walk(cid, level+1)
		}
	}
	walk(s.rootID, 0)
	return snap
}
