package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// Op tags the command variant.
type Op string

const (
	OpInsert       Op = "insert"
	OpDelete       Op = "delete"
	OpMove         Op = "move"
	OpEdit         Op = "edit"
	OpEditDocument Op = "edit_document"
	OpBatch        Op = "batch"
)

// Field names a node field addressable by an edit command.
type Field string

const (
	FieldDescription  Field = "description"
	FieldQuantity     Field = "quantity"
	FieldUnitPrice    Field = "unit_price"
	FieldQuantityType Field = "quantity_type"
	FieldPrimaryCode  Field = "primary_code"
	FieldSFBCode      Field = "sfb_code"
	FieldExternalRef  Field = "external_ref"
	FieldOrphaned     Field = "orphaned"
)

// FieldEdit sets one field to a new value. The previous value is captured
// when the command applies, so the edit inverts exactly.
type FieldEdit struct {
	Field Field
	Value any

	prev     any
	prevFlag bool // previous CodeFlagged, code edits only
}

// SetDescription edits the formatted description.
func SetDescription(text domain.StyledText) FieldEdit {
	return FieldEdit{Field: FieldDescription, Value: text}
}

// SetQuantity edits a cost item's quantity.
func SetQuantity(q decimal.Decimal) FieldEdit {
	return FieldEdit{Field: FieldQuantity, Value: q}
}

// SetUnitPrice edits a cost item's unit price.
func SetUnitPrice(p decimal.Decimal) FieldEdit {
	return FieldEdit{Field: FieldUnitPrice, Value: p}
}

// SetQuantityType edits a cost item's quantity type.
func SetQuantityType(qt domain.QuantityType) FieldEdit {
	return FieldEdit{Field: FieldQuantityType, Value: qt}
}

// SetPrimaryCode edits the STABU code. A malformed code is stored and
// flagged, not rejected.
func SetPrimaryCode(code string) FieldEdit {
	return FieldEdit{Field: FieldPrimaryCode, Value: code}
}

// SetSFBCode edits the SFB classification code.
func SetSFBCode(code string) FieldEdit {
	return FieldEdit{Field: FieldSFBCode, Value: code}
}

// SetExternalRef links or unlinks ("") a BIM element id.
func SetExternalRef(ref string) FieldEdit {
	return FieldEdit{Field: FieldExternalRef, Value: ref}
}

// SetOrphaned marks or clears the orphaned-by-synchronization flag.
func SetOrphaned(orphaned bool) FieldEdit {
	return FieldEdit{Field: FieldOrphaned, Value: orphaned}
}

// DocEdit changes document-level values. Nil fields are untouched.
type DocEdit struct {
	TaxRate        *decimal.Decimal
	OverheadRate   *decimal.Decimal
	ProfitRiskRate *decimal.Decimal
	Name           *string
	Status         *domain.ScheduleStatus

	prevTax        decimal.Decimal
	prevOverhead   decimal.Decimal
	prevProfitRisk decimal.Decimal
	prevName       string
	prevStatus     domain.ScheduleStatus
}

// Command is a described, reversible unit of change: a tagged variant over
// insert, delete, move, field edit, document edit, and batch. A command
// carries exactly the pre-state it needs to invert itself; a deleted
// subtree is retained inside the command, not destroyed, until the
// command is evicted from the bounded undo history.
type Command struct {
	Op    Op
	Label string

	NodeID   string
	ParentID string
	Index    int

	node    *domain.CostNode // insert payload
	subtree map[string]*domain.CostNode
	edits   []FieldEdit
	doc     *DocEdit
	subs    []*Command

	// pre-state captured at apply time
	prevParent string
	prevIndex  int

	// applied marks a command that has executed at least once. A redo
	// replays the same command, so its node id is legitimately present
	// in the used-id set.
	applied bool
}

// Insert creates a command adding node under parentID at index
// (-1 appends). The node must be freshly constructed and childless.
func Insert(parentID string, index int, node *domain.CostNode) *Command {
	return &Command{
		Op:       OpInsert,
		Label:    "insert " + string(node.Kind),
		NodeID:   node.ID,
		ParentID: parentID,
		Index:    index,
		node:     node,
	}
}

// Delete creates a command removing the node and its whole subtree.
func Delete(nodeID string) *Command {
	return &Command{Op: OpDelete, Label: "delete node", NodeID: nodeID}
}

// Move creates a command reparenting nodeID under newParentID at index
// (-1 appends). The index is interpreted after the node is detached from
// its current position.
func Move(nodeID, newParentID string, index int) *Command {
	return &Command{
		Op:       OpMove,
		Label:    "move node",
		NodeID:   nodeID,
		ParentID: newParentID,
		Index:    index,
	}
}

// Edit creates a command applying one or more field edits to a node as a
// single undoable step.
func Edit(nodeID string, edits ...FieldEdit) *Command {
	return &Command{Op: OpEdit, Label: "edit fields", NodeID: nodeID, edits: edits}
}

// EditDocument creates a command changing document-level values such as
// the tax rate or surcharge percentages.
func EditDocument(edit DocEdit) *Command {
	return &Command{Op: OpEditDocument, Label: "edit document", doc: &edit}
}

// Batch creates a command that applies subs in order and undoes as one
// unit. Application is all-or-nothing.
func Batch(label string, subs ...*Command) *Command {
	return &Command{Op: OpBatch, Label: label, subs: subs}
}

// Subcommands returns the batch members, nil for non-batch commands.
func (c *Command) Subcommands() []*Command {
	return c.subs
}
