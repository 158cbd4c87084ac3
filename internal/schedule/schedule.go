// Package schedule implements the cost-schedule engine: an arena-backed
// budget tree, cascading aggregation, and a transactional undo/redo
// command log. One Schedule is one open document; schedules share no
// state and each serializes its own mutations.
package schedule

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// DefaultMaxHistory bounds the undo log. The oldest command (and any
// subtree it retains) is evicted past this limit.
const DefaultMaxHistory = 200

// Surcharges are the percentage markups applied to the subtotal before
// tax: AK (general overhead) and WR (profit and risk).
type Surcharges struct {
	OverheadRate   decimal.Decimal
	ProfitRiskRate decimal.Decimal
}

// Totals are the document-level computed amounts. TaxBase is the subtotal
// plus surcharges; GrandTotal includes tax.
type Totals struct {
	Subtotal   decimal.Decimal
	Overhead   decimal.Decimal
	ProfitRisk decimal.Decimal
	TaxBase    decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Schedule is an open cost-schedule document. All exported methods are
// safe for concurrent readers; mutations are serialized on an internal
// mutex (single logical writer per document).
type Schedule struct {
	mu sync.Mutex

	info domain.ScheduleInfo
	meta domain.ProjectMeta

	nodes  map[string]*domain.CostNode
	rootID string

	// extRefs maps a BIM element id to the node claiming it.
	extRefs map[string]string
	// usedIDs holds every id ever assigned in this document. Ids are
	// never reused, even after the owning command is evicted from the
	// undo log.
	usedIDs map[string]bool

	taxRate    decimal.Decimal
	surcharges Surcharges
	totals     Totals

	undo       []*Command
	redo       []*Command
	batch      *Command
	batchDepth int
	batchDirty []string
	maxHistory int

	observer Observer
}

// Option configures a new Schedule.
type Option func(*Schedule)

// WithName sets the document name.
func WithName(name string) Option {
	return func(s *Schedule) { s.info.Name = name }
}

// WithType sets the schedule type.
func WithType(t domain.ScheduleType) Option {
	return func(s *Schedule) { s.info.Type = t }
}

// WithTaxRate overrides the default 21% VAT rate.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Schedule) { s.taxRate = rate }
}

// WithSurcharges sets the AK/WR markup rates.
func WithSurcharges(sur Surcharges) Option {
	return func(s *Schedule) { s.surcharges = sur }
}

// WithMeta attaches the opaque project metadata record.
func WithMeta(meta domain.ProjectMeta) Option {
	return func(s *Schedule) { s.meta = meta }
}

// WithObserver wires command telemetry.
func WithObserver(o Observer) Option {
	return func(s *Schedule) { s.observer = o }
}

// WithMaxHistory bounds the undo log.
func WithMaxHistory(n int) Option {
	return func(s *Schedule) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New creates an empty schedule with a fresh root node.
func New(opts ...Option) *Schedule {
	root := domain.NewRoot()
	now := time.Now().UTC()
	s := &Schedule{
		info: domain.ScheduleInfo{
			ID:        uuid.New().String(),
			Name:      "Nieuwe begroting",
			Type:      domain.ScheduleBudget,
			Status:    domain.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		nodes:      map[string]*domain.CostNode{root.ID: root},
		rootID:     root.ID,
		extRefs:    map[string]string{},
		usedIDs:    map[string]bool{root.ID: true},
		taxRate:    decimal.NewFromInt(21),
		maxHistory: DefaultMaxHistory,
		observer:   NoopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info returns the document metadata.
func (s *Schedule) Info() domain.ScheduleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Meta returns a copy of the opaque project metadata.
func (s *Schedule) Meta() domain.ProjectMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.ProjectMeta, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}

// RootID returns the id of the document root.
func (s *Schedule) RootID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootID
}

// TaxRate returns the document-wide tax percentage.
func (s *Schedule) TaxRate() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taxRate
}

// SurchargeRates returns the AK/WR markup percentages.
func (s *Schedule) SurchargeRates() Surcharges {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surcharges
}

// Totals returns the document totals as of the last committed command.
func (s *Schedule) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Node returns a copy of the node with the given id.
func (s *Schedule) Node(id string) (domain.CostNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return domain.CostNode{}, false
	}
	return *n.Clone(), true
}

// Children returns copies of the direct children of a node, in order.
func (s *Schedule) Children(id string) []domain.CostNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]domain.CostNode, 0, len(n.Children))
	for _, cid := range n.Children {
		out = append(out, *s.nodes[cid].Clone())
	}
	return out
}

// Ancestors returns copies of the ancestors of a node, nearest first,
// ending at the root.
func (s *Schedule) Ancestors(id string) []domain.CostNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CostNode
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	for n.Parent != "" {
		n = s.nodes[n.Parent]
		out = append(out, *n.Clone())
	}
	return out
}

// Descendants yields copies of every node under id in document order,
// excluding id itself. The sequence is lazy and restartable; each
// restart observes the document order current at that moment.
func (s *Schedule) Descendants(id string) iter.Seq[domain.CostNode] {
	return func(yield func(domain.CostNode) bool) {
		s.mu.Lock()
		order := s.collectOrder(id)
		s.mu.Unlock()
		for _, nid := range order {
			s.mu.Lock()
			n, ok := s.nodes[nid]
			var cp domain.CostNode
			if ok {
				cp = *n.Clone()
			}
			s.mu.Unlock()
			if !ok {
				continue
			}
			if !yield(cp) {
				return
			}
		}
	}
}

// NodeByExternalRef returns the node claiming the given BIM element id.
func (s *Schedule) NodeByExternalRef(ref string) (domain.CostNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.extRefs[ref]
	if !ok {
		return domain.CostNode{}, false
	}
	return *s.nodes[id].Clone(), true
}

// UndoDepth returns the number of undoable commands.
func (s *Schedule) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// RedoDepth returns the number of redoable commands.
func (s *Schedule) RedoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// collectOrder lists descendant ids of start in document order.
// Caller holds the lock.
func (s *Schedule) collectOrder(start string) []string {
	n, ok := s.nodes[start]
	if !ok {
		return nil
	}
	var order []string
	var walk func(*domain.CostNode)
	walk = func(cur *domain.CostNode) {
		for _, cid := range cur.Children {
			order = append(order, cid)
			walk(s.nodes[cid])
		}
	}
	walk(n)
	return order
}

// depth returns the distance from the root. Caller holds the lock.
func (s *Schedule) depth(id string) int {
	d := 0
	for n := s.nodes[id]; n != nil && n.Parent != ""; n = s.nodes[n.Parent] {
		d++
	}
	return d
}

// isDescendant reports whether candidate is id itself or lies in the
// subtree under id. Caller holds the lock.
func (s *Schedule) isDescendant(id, candidate string) bool {
	for cur := candidate; cur != ""; {
		if cur == id {
			return true
		}
		n, ok := s.nodes[cur]
		if !ok {
			return false
		}
		cur = n.Parent
	}
	return false
}

func (s *Schedule) touch() {
	s.info.UpdatedAt = time.Now().UTC()
}
