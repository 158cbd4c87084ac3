package schedule

import (
	"fmt"
	"time"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// Apply validates and applies a command, recomputes affected totals,
// records the command for undo, and discards the redo tail. Application
// is all-or-nothing: on error the document is unchanged.
//
// Inside an open batch the command is applied immediately but recorded
// into the batch; aggregation and undo logging wait for the outermost
// EndBatch.
func (s *Schedule) Apply(cmd *Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	dirty, err := s.applyCommand(cmd)
	if err != nil {
		s.observe(cmd, start, err)
		return err
	}

	if s.batchDepth > 0 {
		s.batch.subs = append(s.batch.subs, cmd)
		s.batchDirty = append(s.batchDirty, dirty...)
		return nil
	}

	s.aggregate(dirty)
	s.pushUndo(cmd)
	s.touch()
	s.observe(cmd, start, nil)
	return nil
}

// Undo reverses the most recent committed command and moves it to the
// redo stack. Returns ErrNothingToUndo on an empty history.
func (s *Schedule) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth > 0 {
		return ErrBatchOpen
	}
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}
	start := time.Now()
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	dirty := s.revertCommand(cmd)
	s.aggregate(dirty)
	s.redo = append(s.redo, cmd)
	s.touch()
	s.observe(cmd, start, nil)
	return nil
}

// Redo reapplies the most recently undone command. Returns
// ErrNothingToRedo on an empty redo stack.
func (s *Schedule) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth > 0 {
		return ErrBatchOpen
	}
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}
	start := time.Now()
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]

	dirty, err := s.applyCommand(cmd)
	if err != nil {
		// A recorded command replays against the exact state it was
		// undone from, so this is unreachable; surface it regardless.
		s.redo = append(s.redo, cmd)
		s.observe(cmd, start, err)
		return err
	}
	s.aggregate(dirty)
	s.undo = append(s.undo, cmd)
	s.touch()
	s.observe(cmd, start, nil)
	return nil
}

// BeginBatch opens a command group that undoes and redoes as one unit.
// Batches nest by reference count; only the outermost EndBatch commits.
func (s *Schedule) BeginBatch(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth == 0 {
		s.batch = Batch(label)
		s.batchDirty = nil
	}
	s.batchDepth++
}

// EndBatch closes one nesting level. The outermost EndBatch aggregates
// once over everything the batch touched and commits the group to the
// undo log. An empty batch commits nothing.
func (s *Schedule) EndBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth == 0 {
		return ErrNoBatch
	}
	s.batchDepth--
	if s.batchDepth > 0 {
		return nil
	}

	cmd := s.batch
	dirty := s.batchDirty
	s.batch = nil
	s.batchDirty = nil
	if len(cmd.subs) == 0 {
		return nil
	}

	start := time.Now()
	s.aggregate(dirty)
	s.pushUndo(cmd)
	s.touch()
	s.observe(cmd, start, nil)
	return nil
}

// CancelBatch aborts the entire open batch, reverting every command
// applied since the outermost BeginBatch. Once a batch has committed,
// cancellation is only achievable via Undo.
func (s *Schedule) CancelBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth == 0 {
		return ErrNoBatch
	}
	cmd := s.batch
	s.batch = nil
	s.batchDepth = 0
	s.batchDirty = nil

	dirty := s.revertCommand(cmd)
	s.aggregate(dirty)
	return nil
}

func (s *Schedule) pushUndo(cmd *Command) {
	s.undo = append(s.undo, cmd)
	s.redo = nil
	if len(s.undo) > s.maxHistory {
		s.undo = s.undo[len(s.undo)-s.maxHistory:]
	}
}

// applyCommand validates and applies one command without aggregating or
// logging. It returns the ids whose ancestor chains need recomputation.
// On error the document is untouched; a failing batch member causes the
// already-applied members to be reverted.
func (s *Schedule) applyCommand(cmd *Command) ([]string, error) {
	switch cmd.Op {
	case OpInsert:
		return s.applyInsert(cmd)
	case OpDelete:
		return s.applyDelete(cmd)
	case OpMove:
		return s.applyMove(cmd)
	case OpEdit:
		return s.applyEdit(cmd)
	case OpEditDocument:
		return s.applyDocEdit(cmd)
	case OpBatch:
		var dirty []string
		for i, sub := range cmd.subs {
			d, err := s.applyCommand(sub)
			if err != nil {
				for j := i - 1; j >= 0; j-- {
					s.revertCommand(cmd.subs[j])
				}
				return nil, err
			}
			dirty = append(dirty, d...)
		}
		return dirty, nil
	default:
		return nil, fmt.Errorf("%w: unknown command op %q", ErrInvalidMutation, cmd.Op)
	}
}

// revertCommand applies the exact inverse of an applied command and
// returns the dirty ids for re-aggregation.
func (s *Schedule) revertCommand(cmd *Command) []string {
	switch cmd.Op {
	case OpInsert:
		n := s.nodes[cmd.NodeID]
		if n.ExternalRef != "" {
			delete(s.extRefs, n.ExternalRef)
		}
		s.detach(cmd.NodeID)
		delete(s.nodes, cmd.NodeID)
		return []string{cmd.ParentID}
	case OpDelete:
		for id, n := range cmd.subtree {
			s.nodes[id] = n.Clone()
			if n.ExternalRef != "" {
				s.extRefs[n.ExternalRef] = id
			}
		}
		s.attach(cmd.NodeID, cmd.prevParent, cmd.prevIndex)
		return []string{cmd.NodeID}
	case OpMove:
		s.detach(cmd.NodeID)
		s.attach(cmd.NodeID, cmd.prevParent, cmd.prevIndex)
		return []string{cmd.NodeID, cmd.ParentID}
	case OpEdit:
		n := s.nodes[cmd.NodeID]
		for i := len(cmd.edits) - 1; i >= 0; i-- {
			s.unsetField(n, &cmd.edits[i])
		}
		return []string{cmd.NodeID}
	case OpEditDocument:
		d := cmd.doc
		if d.TaxRate != nil {
			s.taxRate = d.prevTax
		}
		if d.OverheadRate != nil {
			s.surcharges.OverheadRate = d.prevOverhead
		}
		if d.ProfitRiskRate != nil {
			s.surcharges.ProfitRiskRate = d.prevProfitRisk
		}
		if d.Name != nil {
			s.info.Name = d.prevName
		}
		if d.Status != nil {
			s.info.Status = d.prevStatus
		}
		return nil
	case OpBatch:
		var dirty []string
		for i := len(cmd.subs) - 1; i >= 0; i-- {
			dirty = append(dirty, s.revertCommand(cmd.subs[i])...)
		}
		return dirty
	}
	return nil
}

func (s *Schedule) applyInsert(cmd *Command) ([]string, error) {
	n := cmd.node
	if n == nil || n.ID == "" {
		return nil, fmt.Errorf("%w: insert requires a node", ErrInvalidMutation)
	}
	if !domain.ValidNodeKinds[string(n.Kind)] {
		return nil, fmt.Errorf("%w: unknown node kind %q", ErrInvalidMutation, n.Kind)
	}
	if _, live := s.nodes[n.ID]; live {
		return nil, fmt.Errorf("%w: node id %s already used in this document", ErrInvalidMutation, n.ID)
	}
	if s.usedIDs[n.ID] && !cmd.applied {
		return nil, fmt.Errorf("%w: node id %s already used in this document", ErrInvalidMutation, n.ID)
	}
	if len(n.Children) > 0 {
		return nil, fmt.Errorf("%w: insert takes a childless node", ErrInvalidMutation)
	}
	if _, ok := s.nodes[cmd.ParentID]; !ok {
		return nil, fmt.Errorf("%w: parent %s not found", ErrInvalidMutation, cmd.ParentID)
	}
	if n.ExternalRef != "" {
		if _, claimed := s.extRefs[n.ExternalRef]; claimed {
			return nil, fmt.Errorf("%w: external ref %s already claimed", ErrInvalidMutation, n.ExternalRef)
		}
	}

	live := n.Clone()
	live.Parent = ""
	s.nodes[live.ID] = live
	s.usedIDs[live.ID] = true
	if live.ExternalRef != "" {
		s.extRefs[live.ExternalRef] = live.ID
	}
	if err := s.attach(live.ID, cmd.ParentID, cmd.Index); err != nil {
		delete(s.nodes, live.ID)
		if live.ExternalRef != "" {
			delete(s.extRefs, live.ExternalRef)
		}
		return nil, err
	}
	cmd.applied = true
	return []string{live.ID}, nil
}

func (s *Schedule) applyDelete(cmd *Command) ([]string, error) {
	n, ok := s.nodes[cmd.NodeID]
	if !ok {
		return nil, fmt.Errorf("%w: node %s not found", ErrInvalidMutation, cmd.NodeID)
	}
	if n.IsRoot() {
		return nil, fmt.Errorf("%w: cannot delete the document root", ErrInvalidMutation)
	}

	// Retain the whole subtree inside the command for exact restoration.
	cmd.subtree = map[string]*domain.CostNode{cmd.NodeID: n.Clone()}
	for _, id := range s.collectOrder(cmd.NodeID) {
		cmd.subtree[id] = s.nodes[id].Clone()
	}

	parent, index, err := s.detach(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	cmd.prevParent = parent
	cmd.prevIndex = index
	// The retained clone keeps its parent link for restoration.
	cmd.subtree[cmd.NodeID].Parent = ""

	for id, retained := range cmd.subtree {
		if retained.ExternalRef != "" {
			delete(s.extRefs, retained.ExternalRef)
		}
		delete(s.nodes, id)
	}
	return []string{parent}, nil
}

func (s *Schedule) applyMove(cmd *Command) ([]string, error) {
	n, ok := s.nodes[cmd.NodeID]
	if !ok {
		return nil, fmt.Errorf("%w: node %s not found", ErrInvalidMutation, cmd.NodeID)
	}
	if n.IsRoot() {
		return nil, fmt.Errorf("%w: cannot move the document root", ErrInvalidMutation)
	}
	if _, ok := s.nodes[cmd.ParentID]; !ok {
		return nil, fmt.Errorf("%w: target parent %s not found", ErrInvalidMutation, cmd.ParentID)
	}
	if s.isDescendant(cmd.NodeID, cmd.ParentID) {
		return nil, fmt.Errorf("%w: move would create a cycle", ErrInvalidMutation)
	}

	parent, index, err := s.detach(cmd.NodeID)
	if err != nil {
		return nil, err
	}
	cmd.prevParent = parent
	cmd.prevIndex = index
	if err := s.attach(cmd.NodeID, cmd.ParentID, cmd.Index); err != nil {
		s.attach(cmd.NodeID, parent, index)
		return nil, err
	}
	return []string{cmd.NodeID, parent}, nil
}

func (s *Schedule) applyEdit(cmd *Command) ([]string, error) {
	n, ok := s.nodes[cmd.NodeID]
	if !ok {
		return nil, fmt.Errorf("%w: node %s not found", ErrInvalidMutation, cmd.NodeID)
	}
	if len(cmd.edits) == 0 {
		return nil, fmt.Errorf("%w: edit requires at least one field", ErrInvalidMutation)
	}
	for _, e := range cmd.edits {
		if err := s.validateEdit(n, e); err != nil {
			return nil, err
		}
	}
	for i := range cmd.edits {
		s.setField(n, &cmd.edits[i])
	}
	return []string{cmd.NodeID}, nil
}

func (s *Schedule) applyDocEdit(cmd *Command) ([]string, error) {
	d := cmd.doc
	if d == nil {
		return nil, fmt.Errorf("%w: empty document edit", ErrInvalidMutation)
	}
	if d.TaxRate != nil && d.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", ErrInvalidMutation)
	}
	if d.OverheadRate != nil && d.OverheadRate.IsNegative() {
		return nil, fmt.Errorf("%w: overhead rate cannot be negative", ErrInvalidMutation)
	}
	if d.ProfitRiskRate != nil && d.ProfitRiskRate.IsNegative() {
		return nil, fmt.Errorf("%w: profit/risk rate cannot be negative", ErrInvalidMutation)
	}

	if d.TaxRate != nil {
		d.prevTax = s.taxRate
		s.taxRate = *d.TaxRate
	}
	if d.OverheadRate != nil {
		d.prevOverhead = s.surcharges.OverheadRate
		s.surcharges.OverheadRate = *d.OverheadRate
	}
	if d.ProfitRiskRate != nil {
		d.prevProfitRisk = s.surcharges.ProfitRiskRate
		s.surcharges.ProfitRiskRate = *d.ProfitRiskRate
	}
	if d.Name != nil {
		d.prevName = s.info.Name
		s.info.Name = *d.Name
	}
	if d.Status != nil {
		d.prevStatus = s.info.Status
		s.info.Status = *d.Status
	}
	return nil, nil
}
