package engine

import (
	"github.com/smol-dev/smoledit/pkg/backup"
)

// State is the per-file position in the batch executor's state machine.
type State int

const (
	StatePending State = iota
	StateResolving
	StateMutating
	StateAwaitingApproval
	StateCommitting
	// Terminal states.
	StateCommitted
	StateSkipped
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolving:
		return "resolving"
	case StateMutating:
		return "mutating"
	case StateAwaitingApproval:
		return "awaiting_approval"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-file result of a batch. One Outcome is produced per
// distinct path the batch touches.
type Outcome struct {
	// Path is the repository-relative file path.
	Path string
	// State is the terminal state: StateCommitted, StateSkipped or StateFailed.
	State State
	// Reason carries the taxonomy error for skipped and failed files.
	Reason error
	// Before and After are the pre-batch and committed buffers. Only set for
	// committed files.
	Before []byte
	After  []byte
	// Diff is the rendered unified diff shown for approval.
	Diff string
	// Backup links to the pristine snapshot for committed files.
	Backup *backup.Record
}

// Applied reports whether the file was committed to disk.
func (o Outcome) Applied() bool { return o.State == StateCommitted }

// Skipped reports whether the file was skipped without touching disk.
func (o Outcome) Skipped() bool { return o.State == StateSkipped }

// Failed reports whether the file hit an I/O-level failure.
func (o Outcome) Failed() bool { return o.State == StateFailed }

// Report is the result of applying one batch.
type Report struct {
	BatchID  string
	Outcomes []Outcome
	// BackupDir is the batch's backup directory. Empty when no file
	// committed (no backup directory is created for an all-skip batch).
	BackupDir string
}

// AppliedCount returns how many files were committed.
func (r *Report) AppliedCount() int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Applied() {
			n++
		}
	}
	return n
}

// FailedCount returns how many files failed.
func (r *Report) FailedCount() int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Failed() {
			n++
		}
	}
	return n
}
