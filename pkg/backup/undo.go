package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/fsutil"
)

// ErrUndoNotAvailable is returned when there is no batch left to undo.
var ErrUndoNotAvailable = errors.New("nothing to undo")

// UndoStack holds the backup records of recently committed batches, newest
// on top. It is explicit process-scoped state: construct one per engine,
// pass it by reference, discard it at process exit. Empty at process start.
type UndoStack struct {
	repoRoot string

	mu      sync.Mutex
	batches []undoEntry
}

type undoEntry struct {
	batchID string
	records []Record
}

// NewUndoStack creates an empty undo stack for the given repository root.
func NewUndoStack(repoRoot string) *UndoStack {
	return &UndoStack{repoRoot: filepath.Clean(repoRoot)}
}

// Record pushes a committed batch's backup records. Batches with no
// committed files are not recorded.
func (u *UndoStack) Record(batchID string, records []Record) {
	if len(records) == 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.batches = append(u.batches, undoEntry{batchID: batchID, records: records})
}

// Depth reports how many batches can be undone.
func (u *UndoStack) Depth() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.batches)
}

// UndoLast restores every file of the most recent batch to its backed-up
// content and pops that batch. The batch is restored as a unit: all backups
// are verified to exist before the first write, and the entry is only popped
// when every restore succeeded, so a failed undo can be retried.
func (u *UndoStack) UndoLast(ctx context.Context) ([]Record, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.batches) == 0 {
		return nil, ErrUndoNotAvailable
	}
	entry := u.batches[len(u.batches)-1]

	for _, rec := range entry.records {
		if _, err := os.Stat(rec.BackupPath); err != nil {
			return nil, errors.Errorf("backup for %s is gone: %w", rec.RelPath, err)
		}
	}

	logger := zerolog.Ctx(ctx)
	for _, rec := range entry.records {
		content, err := os.ReadFile(rec.BackupPath)
		if err != nil {
			return nil, errors.Errorf("reading backup of %s: %w", rec.RelPath, err)
		}
		target := filepath.Join(u.repoRoot, rec.RelPath)
		if err := fsutil.WriteFileAtomic(target, content); err != nil {
			return nil, errors.Errorf("restoring %s: %w", rec.RelPath, err)
		}
		logger.Debug().Str("file", rec.RelPath).Msg("restored from backup")
	}

	u.batches = u.batches[:len(u.batches)-1]
	return entry.records, nil
}
