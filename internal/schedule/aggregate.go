package schedule

import (
	"sort"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/money"
)

// aggregate recomputes line totals along the ancestor chain of every
// dirty node, then refreshes the document totals. Chains are processed
// deepest-first so a chapter is always summed after its changed children,
// bounding the work to (dirty nodes × tree depth) instead of subtree
// size. Caller holds the lock.
func (s *Schedule) aggregate(dirty []string) {
	type entry struct {
		id    string
		depth int
	}
	entries := make([]entry, 0, len(dirty))
	seen := map[string]bool{}
	for _, id := range dirty {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := s.nodes[id]; !ok {
			continue
		}
		entries = append(entries, entry{id: id, depth: s.depth(id)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].depth > entries[j].depth })

	for _, e := range entries {
		for cur := e.id; cur != ""; {
			n := s.nodes[cur]
			s.recomputeNode(n)
			cur = n.Parent
		}
	}
	s.recomputeTotals()
}

// recomputeNode refreshes one node's line total from its direct children
// (chapters) or its own quantity and price (cost items). Caller holds the
// lock.
func (s *Schedule) recomputeNode(n *domain.CostNode) {
	switch n.Kind {
	case domain.KindCostItem:
		n.LineTotal = money.Mul(n.Quantity, n.UnitPrice)
	case domain.KindChapter:
		total := money.Zero()
		for _, cid := range n.Children {
			total = money.Add(total, s.nodes[cid].LineTotal)
		}
		n.LineTotal = total
	default:
		n.LineTotal = money.Zero()
	}
}

// recomputeTotals derives the document-level amounts from the root's
// line total. Surcharges and tax are the only rounding points; the
// subtotal keeps full precision.
func (s *Schedule) recomputeTotals() {
	sub := s.nodes[s.rootID].LineTotal
	overhead := money.ApplyTax(sub, s.surcharges.OverheadRate)
	profit := money.ApplyTax(money.Add(sub, overhead), s.surcharges.ProfitRiskRate)
	base := money.Sum(sub, overhead, profit)
	tax := money.ApplyTax(base, s.taxRate)
	s.totals = Totals{
		Subtotal:   sub,
		Overhead:   overhead,
		ProfitRisk: profit,
		TaxBase:    base,
		Tax:        tax,
		GrandTotal: money.Add(base, tax),
	}
}

// recomputeAll rebuilds every line total bottom-up. Used when a document
// is constructed outside the command pipeline (load, restore).
// Caller holds the lock.
func (s *Schedule) recomputeAll() {
	var walk func(id string)
	walk = func(id string) {
		n := s.nodes[id]
		for _, cid := range n.Children {
			walk(cid)
		}
		s.recomputeNode(n)
	}
	walk(s.rootID)
	s.recomputeTotals()
}
