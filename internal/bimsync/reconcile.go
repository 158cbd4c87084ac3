// Package bimsync reconciles quantities from an external building model
// against an existing cost schedule. Matching runs on stable external
// element identifiers; manually entered prices, descriptions, and codes
// are never overwritten.
package bimsync

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// Element is one quantity-bearing object from the external model.
type Element struct {
	// ExternalID is the stable identifier of the element, typically an
	// IFC GlobalId. Required and unique within one reconciliation set.
	ExternalID string `json:"external_id"`

	// Quantity is the measured quantity for the element.
	Quantity decimal.Decimal `json:"quantity"`

	// QuantityType describes what the quantity measures. Empty means
	// piece count.
	QuantityType domain.QuantityType `json:"quantity_type,omitempty"`

	// Hint is an optional classification suggestion for elements that
	// have no matching cost item yet. It is stored as a provisional
	// code and flagged for review.
	Hint string `json:"hint,omitempty"`

	// Description labels newly created cost items. Falls back to the
	// external id when empty.
	Description string `json:"description,omitempty"`
}

// Report counts what one reconciliation run did.
type Report struct {
	Updated   int // existing items whose quantity changed
	Created   int // new provisional items
	Orphaned  int // items whose element vanished from the source
	Conflicts int // duplicate external ids in the input
}

// StagingChapterName labels the chapter that collects cost items created
// for elements without a match. It is created on first use and reused on
// later runs.
const StagingChapterName = "Nog in te delen BIM-elementen"

// Reconcile merges elems into the schedule as a single undoable batch.
//
// Matched items get their quantity updated and, if previously orphaned,
// their orphan mark cleared. Unmatched elements become flagged cost items
// under the staging chapter. Items referencing an element that is absent
// from elems are marked orphaned, never deleted. Duplicate external ids
// fail the whole run with ErrSynchronizationConflict and commit nothing.
//
// Running the same element set twice is idempotent: the second run
// reports all zeroes and leaves the undo history untouched.
func Reconcile(s *schedule.Schedule, elems []Element) (Report, error) {
	var report Report

	incoming := make(map[string]bool, len(elems))
	for _, e := range elems {
		if e.ExternalID == "" {
			report.Conflicts++
			continue
		}
		if incoming[e.ExternalID] {
			report.Conflicts++
			continue
		}
		incoming[e.ExternalID] = true
	}
	if report.Conflicts > 0 {
		return report, fmt.Errorf("%w: %d conflicting element id(s) in input",
			schedule.ErrSynchronizationConflict, report.Conflicts)
	}

	// Collect referencing items up front; Descendants must not run while
	// the batch mutates the tree.
	type linked struct {
		id       string
		ref      string
		orphaned bool
	}
	var refs []linked
	for n := range s.Descendants(s.RootID()) {
		if n.Kind == domain.KindCostItem && n.ExternalRef != "" {
			refs = append(refs, linked{id: n.ID, ref: n.ExternalRef, orphaned: n.Orphaned})
		}
	}

	s.BeginBatch("BIM-synchronisatie")
	commit := func(cmd *schedule.Command) error {
		if err := s.Apply(cmd); err != nil {
			s.CancelBatch()
			return err
		}
		return nil
	}

	stagingID := ""
	for _, e := range elems {
		existing, ok := s.NodeByExternalRef(e.ExternalID)
		if ok {
			var edits []schedule.FieldEdit
			if !existing.Quantity.Equal(e.Quantity) {
				edits = append(edits, schedule.SetQuantity(e.Quantity))
			}
			if e.QuantityType != "" && existing.QuantityType != e.QuantityType {
				edits = append(edits, schedule.SetQuantityType(e.QuantityType))
			}
			if existing.Orphaned {
				edits = append(edits, schedule.SetOrphaned(false))
			}
			if len(edits) == 0 {
				continue
			}
			if err := commit(schedule.Edit(existing.ID, edits...)); err != nil {
				return Report{}, err
			}
			report.Updated++
			continue
		}

		if stagingID == "" {
			id, err := ensureStagingChapter(s, commit)
			if err != nil {
				return Report{}, err
			}
			stagingID = id
		}
		desc := e.Description
		if desc == "" {
			desc = e.ExternalID
		}
		item := domain.NewCostItem(desc, domain.Code{Primary: e.Hint}, e.Quantity, decimal.Zero, e.QuantityType)
		item.ExternalRef = e.ExternalID
		item.CodeFlagged = true // provisional classification, needs review
		if err := commit(schedule.Insert(stagingID, -1, item)); err != nil {
			return Report{}, err
		}
		report.Created++
	}

	for _, l := range refs {
		if incoming[l.ref] || l.orphaned {
			continue
		}
		if err := commit(schedule.Edit(l.id, schedule.SetOrphaned(true))); err != nil {
			return Report{}, err
		}
		report.Orphaned++
	}

	if err := s.EndBatch(); err != nil {
		return Report{}, err
	}
	return report, nil
}

// ensureStagingChapter returns the id of the staging chapter under the
// root, inserting it inside the open batch when absent.
func ensureStagingChapter(s *schedule.Schedule, commit func(*schedule.Command) error) (string, error) {
	for _, c := range s.Children(s.RootID()) {
		if c.Kind == domain.KindChapter && c.Description.Plain() == StagingChapterName {
			return c.ID, nil
		}
	}
	ch := domain.NewChapter(StagingChapterName, domain.Code{})
	if err := commit(schedule.Insert(s.RootID(), -1, ch)); err != nil {
		return "", err
	}
	return ch.ID, nil
}
