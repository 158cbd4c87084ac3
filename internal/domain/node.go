package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostNode is one node in the budget tree. Ownership lives in the schedule
// arena: Children holds ids, Parent is an id back-reference, never a
// pointer, so the tree stays acyclic by construction.
type CostNode struct {
	ID           string
	Kind         NodeKind
	Code         Code
	Description  StyledText
	Quantity     decimal.Decimal // cost items only
	QuantityType QuantityType    // cost items only
	UnitPrice    decimal.Decimal // cost items only
	LineTotal    decimal.Decimal // derived, maintained by aggregation
	ExternalRef  string          // BIM element id, "" for manual nodes
	Orphaned     bool            // external element vanished from the BIM source
	CodeFlagged  bool            // provisional or malformed code, needs review
	Children     []string
	Parent       string // "" for the document root
}

// NewChapter creates a chapter node with a fresh id.
func NewChapter(description string, code Code) *CostNode {
	n := &CostNode{
		ID:          uuid.New().String(),
		Kind:        KindChapter,
		Code:        code,
		Description: PlainText(description),
	}
	n.flagCode()
	return n
}

// NewCostItem creates a leaf cost item with a fresh id.
func NewCostItem(description string, code Code, quantity, unitPrice decimal.Decimal, qt QuantityType) *CostNode {
	if qt == "" {
		qt = QuantityCount
	}
	n := &CostNode{
		ID:           uuid.New().String(),
		Kind:         KindCostItem,
		Code:         code,
		Description:  PlainText(description),
		Quantity:     quantity,
		QuantityType: qt,
		UnitPrice:    unitPrice,
	}
	n.flagCode()
	return n
}

// NewTextLine creates a non-numeric annotation node with a fresh id.
func NewTextLine(description string) *CostNode {
	return &CostNode{
		ID:          uuid.New().String(),
		Kind:        KindTextLine,
		Description: PlainText(description),
	}
}

// NewRoot creates the document root. The root is a chapter without a code
// and is never visible in reports.
func NewRoot() *CostNode {
	return &CostNode{
		ID:   uuid.New().String(),
		Kind: KindChapter,
	}
}

func (n *CostNode) flagCode() {
	if err := ValidatePrimary(n.Code.Primary); err != nil {
		n.CodeFlagged = true
	}
}

// IsRoot reports whether the node has no parent.
func (n *CostNode) IsRoot() bool {
	return n.Parent == ""
}

// Clone returns a deep copy of the node. Children ids are copied as-is;
// cloning a subtree is the schedule's concern.
func (n *CostNode) Clone() *CostNode {
	out := *n
	out.Description = n.Description.Clone()
	out.Children = append([]string(nil), n.Children...)
	return &out
}
