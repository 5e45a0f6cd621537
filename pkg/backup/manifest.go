package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/fsutil"
)

const manifestName = "manifest.json"

// Manifest records what one batch backed up. It lives inside the batch
// directory so backups stay inspectable and undo works across processes.
type Manifest struct {
	BatchID   string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`
	Undone    bool      `json:"undone,omitempty"`
	Records   []Record  `json:"records"`

	dir string
}

// WriteManifest persists the batch manifest into the batch directory.
func (b *BatchDir) WriteManifest(records []Record) (*Manifest, error) {
	m := &Manifest{
		BatchID:   b.ID,
		CreatedAt: b.Timestamp,
		Records:   records,
		dir:       b.Dir,
	}
	if err := m.write(); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkUndone flags the manifest so LoadLatest skips this batch.
func (m *Manifest) MarkUndone() error {
	m.Undone = true
	return m.write()
}

func (m *Manifest) write() error {
	data, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return errors.Errorf("marshaling manifest: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(m.dir, manifestName), data); err != nil {
		return errors.Errorf("writing manifest: %w", err)
	}
	return nil
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}
