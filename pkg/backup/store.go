// Copyright 2025 smol-dev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package backup persists pre-edit snapshots of files and replays them on
// undo. Every batch gets one directory, keyed by the batch timestamp, that
// mirrors repository-relative paths:
//
//	.smoledit/backups/<unix-ts>/<rel/path/to/file>
//
// A mutation is never permitted without a retrievable backup.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/fsutil"
)

// DefaultDir is the backup location relative to the repository root.
const DefaultDir = ".smoledit/backups"

// ErrBackupFailed is returned when a pre-edit snapshot cannot be taken. The
// engine aborts the mutation of that file: no backup, no write.
var ErrBackupFailed = errors.New("backup failed")

// BackupError wraps the I/O failure behind a failed snapshot.
type BackupError struct {
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backing up %s: %v", e.Path, e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrBackupFailed) match.
func (e *BackupError) Is(target error) bool { return target == ErrBackupFailed }

// Record links one mutated file to its pristine snapshot for a given batch.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	RelPath    string    `json:"rel_path"`
	BackupPath string    `json:"backup_path"`
}

// Store manages the backup directory tree under one repository root.
type Store struct {
	repoRoot string
	root     string
}

// NewStore creates a store rooted at repoRoot. dir is the backup directory
// relative to repoRoot; empty means DefaultDir.
func NewStore(repoRoot, dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{
		repoRoot: filepath.Clean(repoRoot),
		root:     filepath.Join(repoRoot, dir),
	}
}

// Root returns the absolute backup root.
func (s *Store) Root() string { return s.root }

// BatchDir is the backup directory of one in-flight batch.
type BatchDir struct {
	ID        string
	Timestamp time.Time
	Dir       string

	store *Store
}

// Begin creates the per-batch backup directory, keyed by the batch
// timestamp.
func (s *Store) Begin(batchID string, ts time.Time) (*BatchDir, error) {
	dir := filepath.Join(s.root, strconv.FormatInt(ts.Unix(), 10))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Errorf("creating batch backup directory: %w", err)
	}
	return &BatchDir{ID: batchID, Timestamp: ts, Dir: dir, store: s}, nil
}

// Snapshot copies the current on-disk bytes of rel into the batch directory,
// preserving the relative path. It re-reads the file from disk at call time,
// so the record always refers to what was genuinely on disk before the first
// write of this batch.
func (b *BatchDir) Snapshot(ctx context.Context, rel string) (Record, error) {
	src := filepath.Join(b.store.repoRoot, rel)
	dst := filepath.Join(b.Dir, filepath.FromSlash(rel))

	if err := fsutil.CopyFile(src, dst); err != nil {
		return Record{}, &BackupError{Path: rel, Err: err}
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", rel).
		Str("backup", dst).
		Msg("snapshot taken")

	return Record{Timestamp: b.Timestamp, RelPath: rel, BackupPath: dst}, nil
}

// List returns the manifests of all recorded batches, newest first. Batch
// directories without a readable manifest are skipped.
func (s *Store) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading backup root: %w", err)
	}

	var manifests []*Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := readManifest(filepath.Join(s.root, e.Name()))
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// LoadLatest returns the most recent batch manifest that has not been undone
// yet, or ErrUndoNotAvailable when none exists.
func (s *Store) LoadLatest() (*Manifest, error) {
	manifests, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, m := range manifests {
		if !m.Undone {
			return m, nil
		}
	}
	return nil, ErrUndoNotAvailable
}
