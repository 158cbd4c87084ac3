package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// RestoreState is the persisted form of a schedule: everything needed to
// reconstruct an identical document. Undo history is not part of it.
type RestoreState struct {
	Info       domain.ScheduleInfo
	Meta       domain.ProjectMeta
	TaxRate    decimal.Decimal
	Surcharges Surcharges
	RootID     string
	Nodes      []*domain.CostNode
}

// Restore rebuilds a schedule from persisted state, bypassing the command
// pipeline. The node set must form a single connected tree rooted at
// RootID; line totals are recomputed rather than trusted.
func Restore(state RestoreState, opts ...Option) (*Schedule, error) {
	if state.RootID == "" {
		return nil, fmt.Errorf("restore: missing root id")
	}

	s := New(opts...)
	s.info = state.Info
	s.meta = state.Meta
	s.taxRate = state.TaxRate
	s.surcharges = state.Surcharges

	nodes := make(map[string]*domain.CostNode, len(state.Nodes))
	used := make(map[string]bool, len(state.Nodes))
	refs := map[string]string{}
	for _, n := range state.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("restore: node with empty id")
		}
		if used[n.ID] {
			return nil, fmt.Errorf("restore: duplicate node id %s", n.ID)
		}
		if n.ExternalRef != "" {
			if _, claimed := refs[n.ExternalRef]; claimed {
				return nil, fmt.Errorf("restore: duplicate external ref %s", n.ExternalRef)
			}
			refs[n.ExternalRef] = n.ID
		}
		nodes[n.ID] = n.Clone()
		used[n.ID] = true
	}

	root, ok := nodes[state.RootID]
	if !ok {
		return nil, fmt.Errorf("restore: root %s not among nodes", state.RootID)
	}
	if root.Parent != "" {
		return nil, fmt.Errorf("restore: root %s has a parent", state.RootID)
	}

	// Verify connectivity and single-parent ownership.
	reached := map[string]bool{}
	var walk func(id string) error
	walk = func(id string) error {
		if reached[id] {
			return fmt.Errorf("restore: node %s reached twice", id)
		}
		reached[id] = true
		n := nodes[id]
		for _, cid := range n.Children {
			c, ok := nodes[cid]
			if !ok {
				return fmt.Errorf("restore: child %s of %s not among nodes", cid, id)
			}
			if c.Parent != id {
				return fmt.Errorf("restore: node %s parent link disagrees with child list of %s", cid, id)
			}
			if err := walk(cid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(state.RootID); err != nil {
		return nil, err
	}
	if len(reached) != len(nodes) {
		return nil, fmt.Errorf("restore: %d of %d nodes unreachable from root", len(nodes)-len(reached), len(nodes))
	}

	s.nodes = nodes
	s.rootID = state.RootID
	s.extRefs = refs
	s.usedIDs = used
	s.recomputeAll()
	return s, nil
}

// DumpState extracts the persistable state of the document.
func (s *Schedule) DumpState() RestoreState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := RestoreState{
		Info:       s.info,
		Meta:       make(domain.ProjectMeta, len(s.meta)),
		TaxRate:    s.taxRate,
		Surcharges: s.surcharges,
		RootID:     s.rootID,
	}
	for k, v := range s.meta {
		state.Meta[k] = v
	}
	state.Nodes = append(state.Nodes, s.nodes[s.rootID].Clone())
	for _, id := range s.collectOrder(s.rootID) {
		state.Nodes = append(state.Nodes, s.nodes[id].Clone())
	}
	return state
}
