package schedule

import "errors"

var (
	// ErrInvalidMutation reports a command that violates a tree or value
	// invariant: moving a node under its own descendant, deleting the
	// root, inserting under a missing parent, editing a numeric field on
	// a text line. The command has no effect.
	ErrInvalidMutation = errors.New("invalid mutation")

	// ErrNothingToUndo reports an undo on an empty history. Non-fatal.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo reports a redo on an empty redo stack. Non-fatal.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrSynchronizationConflict reports duplicate external identifiers
	// within one reconciliation batch. The whole batch is rejected.
	ErrSynchronizationConflict = errors.New("synchronization conflict")

	// ErrBatchOpen reports an operation that cannot run while a batch is
	// being recorded, such as undo or redo.
	ErrBatchOpen = errors.New("batch in progress")

	// ErrNoBatch reports EndBatch or CancelBatch without a matching
	// BeginBatch.
	ErrNoBatch = errors.New("no batch in progress")
)
