package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// Structural primitives. These mutate tree shape and fields only; they
// never touch LineTotal or document totals. Aggregation is the engine's
// job after a command commits. Caller holds the lock.

// attach links an already-registered node under parent at index.
// index -1 appends.
func (s *Schedule) attach(childID, parentID string, index int) error {
	parent, ok := s.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: parent %s not found", ErrInvalidMutation, parentID)
	}
	child, ok := s.nodes[childID]
	if !ok {
		return fmt.Errorf("%w: node %s not found", ErrInvalidMutation, childID)
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, "")
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = childID
	child.Parent = parentID
	return nil
}

// detach unlinks a node from its parent and returns its former index.
// The node stays registered in the arena.
func (s *Schedule) detach(childID string) (parentID string, index int, err error) {
	child, ok := s.nodes[childID]
	if !ok {
		return "", 0, fmt.Errorf("%w: node %s not found", ErrInvalidMutation, childID)
	}
	if child.Parent == "" {
		return "", 0, fmt.Errorf("%w: cannot detach the root", ErrInvalidMutation)
	}
	parent := s.nodes[child.Parent]
	for i, cid := range parent.Children {
		if cid == childID {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			parentID = child.Parent
			child.Parent = ""
			return parentID, i, nil
		}
	}
	return "", 0, fmt.Errorf("%w: node %s missing from parent child list", ErrInvalidMutation, childID)
}

// validateEdit checks one field edit against a node without applying it.
func (s *Schedule) validateEdit(n *domain.CostNode, e FieldEdit) error {
	numeric := func() error {
		if n.Kind != domain.KindCostItem {
			return fmt.Errorf("%w: field %s only applies to cost items", ErrInvalidMutation, e.Field)
		}
		return nil
	}
	switch e.Field {
	case FieldDescription:
		if _, ok := e.Value.(domain.StyledText); !ok {
			return fmt.Errorf("%w: description requires styled text", ErrInvalidMutation)
		}
	case FieldQuantity, FieldUnitPrice:
		if err := numeric(); err != nil {
			return err
		}
		if _, ok := e.Value.(decimal.Decimal); !ok {
			return fmt.Errorf("%w: field %s requires a decimal value", ErrInvalidMutation, e.Field)
		}
	case FieldQuantityType:
		if err := numeric(); err != nil {
			return err
		}
		qt, ok := e.Value.(domain.QuantityType)
		if !ok || !domain.ValidQuantityTypes[string(qt)] {
			return fmt.Errorf("%w: invalid quantity type %v", ErrInvalidMutation, e.Value)
		}
	case FieldPrimaryCode, FieldSFBCode:
		if _, ok := e.Value.(string); !ok {
			return fmt.Errorf("%w: field %s requires a string value", ErrInvalidMutation, e.Field)
		}
	case FieldExternalRef:
		ref, ok := e.Value.(string)
		if !ok {
			return fmt.Errorf("%w: external ref requires a string value", ErrInvalidMutation)
		}
		if err := numeric(); err != nil {
			return err
		}
		if ref != "" {
			if owner, claimed := s.extRefs[ref]; claimed && owner != n.ID {
				return fmt.Errorf("%w: external ref %s already claimed", ErrInvalidMutation, ref)
			}
		}
	case FieldOrphaned:
		if _, ok := e.Value.(bool); !ok {
			return fmt.Errorf("%w: orphaned requires a bool value", ErrInvalidMutation)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidMutation, e.Field)
	}
	return nil
}

// setField applies a validated edit and captures the previous value in e
// for exact reversal.
func (s *Schedule) setField(n *domain.CostNode, e *FieldEdit) {
	switch e.Field {
	case FieldDescription:
		e.prev = n.Description
		n.Description = e.Value.(domain.StyledText)
	case FieldQuantity:
		e.prev = n.Quantity
		n.Quantity = e.Value.(decimal.Decimal)
	case FieldUnitPrice:
		e.prev = n.UnitPrice
		n.UnitPrice = e.Value.(decimal.Decimal)
	case FieldQuantityType:
		e.prev = n.QuantityType
		n.QuantityType = e.Value.(domain.QuantityType)
	case FieldPrimaryCode:
		e.prev = n.Code.Primary
		e.prevFlag = n.CodeFlagged
		n.Code.Primary = e.Value.(string)
		n.CodeFlagged = domain.ValidatePrimary(n.Code.Primary) != nil
	case FieldSFBCode:
		e.prev = n.Code.SFB
		n.Code.SFB = e.Value.(string)
	case FieldExternalRef:
		e.prev = n.ExternalRef
		if n.ExternalRef != "" {
			delete(s.extRefs, n.ExternalRef)
		}
		n.ExternalRef = e.Value.(string)
		if n.ExternalRef != "" {
			s.extRefs[n.ExternalRef] = n.ID
		}
	case FieldOrphaned:
		e.prev = n.Orphaned
		n.Orphaned = e.Value.(bool)
	}
}

// unsetField restores the previous value captured by setField.
func (s *Schedule) unsetField(n *domain.CostNode, e *FieldEdit) {
	switch e.Field {
	case FieldDescription:
		n.Description = e.prev.(domain.StyledText)
	case FieldQuantity:
		n.Quantity = e.prev.(decimal.Decimal)
	case FieldUnitPrice:
		n.UnitPrice = e.prev.(decimal.Decimal)
	case FieldQuantityType:
		n.QuantityType = e.prev.(domain.QuantityType)
	case FieldPrimaryCode:
		n.Code.Primary = e.prev.(string)
		n.CodeFlagged = e.prevFlag
	case FieldSFBCode:
		n.Code.SFB = e.prev.(string)
	case FieldExternalRef:
		if n.ExternalRef != "" {
			delete(s.extRefs, n.ExternalRef)
		}
		n.ExternalRef = e.prev.(string)
		if n.ExternalRef != "" {
			s.extRefs[n.ExternalRef] = n.ID
		}
	case FieldOrphaned:
		n.Orphaned = e.prev.(bool)
	}
}
