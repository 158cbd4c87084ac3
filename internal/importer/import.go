package importer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// ErrInvalidRecords reports that the record set failed validation and
// nothing was imported.
var ErrInvalidRecords = errors.New("invalid import records")

// Summary counts what one import run produced.
type Summary struct {
	Chapters  int
	CostItems int
	TextLines int
	Flagged   int // records imported with a provisional or colliding code
}

// Import converts records into the schedule as a single undoable batch,
// preserving the given order. Chapters are grouped by classification
// code: each coded record is attached under the nearest earlier record
// whose code is a strict dotted prefix of its own ("01" becomes the
// ancestor chapter of "01.02"). Codeless records follow their
// predecessor's chapter. A record whose code was already claimed earlier
// in the set is imported next to the first claimant and flagged for
// review, never rejected.
func Import(s *schedule.Schedule, records []Record) (Summary, error) {
	if errs := ValidateRecords(records); len(errs) > 0 {
		return Summary{}, fmt.Errorf("%w: %w", ErrInvalidRecords, errors.Join(errs...))
	}

	var summary Summary
	chapters := make(map[string]string) // chapter code -> node id
	claimed := make(map[string]bool)    // every code seen, any kind
	lastParent := s.RootID()

	s.BeginBatch("importeren")
	for _, r := range records {
		parent := lastParent
		if r.Code != "" {
			parent = ancestorChapter(s, chapters, r.Code)
		}

		node := buildNode(r)
		if r.Code != "" && claimed[r.Code] {
			node.CodeFlagged = true
		}
		if node.CodeFlagged {
			summary.Flagged++
		}

		if err := s.Apply(schedule.Insert(parent, -1, node)); err != nil {
			s.CancelBatch()
			return Summary{}, err
		}

		switch node.Kind {
		case domain.KindChapter:
			summary.Chapters++
			if r.Code != "" && !claimed[r.Code] {
				chapters[r.Code] = node.ID
			}
			lastParent = node.ID
		case domain.KindCostItem:
			summary.CostItems++
			lastParent = parent
		default:
			summary.TextLines++
			lastParent = parent
		}
		if r.Code != "" {
			claimed[r.Code] = true
		}
	}
	if err := s.EndBatch(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// ancestorChapter finds the deepest previously imported chapter whose
// code is a strict dotted prefix of code, falling back to the root.
func ancestorChapter(s *schedule.Schedule, chapters map[string]string, code string) string {
	best := ""
	for candidate := range chapters {
		if !domain.IsStrictPrefix(candidate, code) {
			continue
		}
		if domain.CodeDepth(candidate) > domain.CodeDepth(best) {
			best = candidate
		}
	}
	if best == "" {
		return s.RootID()
	}
	return chapters[best]
}

func buildNode(r Record) *domain.CostNode {
	code := domain.Code{Primary: r.Code, SFB: r.SFBCode}
	if r.Quantity != nil || r.UnitPrice != nil {
		qty, price := decimal.Zero, decimal.Zero
		if r.Quantity != nil {
			qty = *r.Quantity
		}
		if r.UnitPrice != nil {
			price = *r.UnitPrice
		}
		n := domain.NewCostItem(r.Description, code, qty, price, r.QuantityType)
		n.ExternalRef = r.ExternalRef
		return n
	}
	if r.Code != "" {
		return domain.NewChapter(r.Description, code)
	}
	return domain.NewTextLine(r.Description)
}
