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

// Package engine executes edit batches against a repository: it resolves
// anchors, mutates buffers, renders diffs for approval, snapshots originals
// and commits atomically. Files are processed one at a time, independently:
// one file's failure never blocks its siblings, and each file commits on its
// own (there is no cross-file transaction).
package engine

import (
	"context"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/backup"
	"github.com/smol-dev/smoledit/pkg/diffview"
	"github.com/smol-dev/smoledit/pkg/edit"
	"github.com/smol-dev/smoledit/pkg/fsutil"
	"github.com/smol-dev/smoledit/pkg/text"
)

// ErrUserDeclined is the skip reason for files whose diff the caller
// rejected.
var ErrUserDeclined = errors.New("declined by user")

// ErrProtectedPath is the skip reason for files matched by a protected glob.
var ErrProtectedPath = errors.New("path is protected")

// Approver decides whether a file's rendered diff may be committed. It is a
// synchronous decision injected by the caller; the engine blocks on it.
type Approver func(ctx context.Context, path, diff string) (bool, error)

// ApproveAll approves every file. Used for --yes runs and tests.
func ApproveAll(context.Context, string, string) (bool, error) { return true, nil }

// 🔧 Options configures the engine.
type Options struct {
	// Root is the absolute repository root. Required.
	Root string
	// Store persists pre-edit snapshots. Required.
	Store *backup.Store
	// Undo records committed batches. Required, never a hidden singleton:
	// the caller owns its lifecycle.
	Undo *backup.UndoStack
	// Approver decides per-file approval. Nil approves everything.
	Approver Approver
	// MaxFileSize is the post-mutation ceiling; 0 means fsutil.MaxFileSize.
	MaxFileSize int64
	// ContextLines is the diff context window; 0 means the default.
	ContextLines int
	// Protected lists doublestar globs the engine refuses to edit.
	Protected []string
}

// 🏭 New creates an engine with the given options.
func New(opts Options) (*Engine, error) {
	if opts.Root == "" {
		return nil, errors.New("repository root is required")
	}
	if opts.Store == nil {
		return nil, errors.New("backup store is required")
	}
	if opts.Undo == nil {
		return nil, errors.New("undo stack is required")
	}
	if opts.Approver == nil {
		opts.Approver = ApproveAll
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = fsutil.MaxFileSize
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = diffview.DefaultContextLines
	}
	return &Engine{opts: opts, now: time.Now}, nil
}

// 🎮 Engine applies edit batches. One batch runs at a time; the engine does
// no internal parallelism.
type Engine struct {
	opts Options
	now  func() time.Time
}

// Apply executes a batch and returns one outcome per distinct file path. A
// malformed batch is rejected as a whole, before any file is touched; every
// other error is file-scoped and lands in that file's outcome.
func (e *Engine) Apply(ctx context.Context, batch *edit.Batch) (*Report, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	report := &Report{BatchID: uuid.NewString()}
	ts := e.now().UTC()

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("batch", report.BatchID).
		Int("edits", len(batch.Edits)).
		Msg("applying batch")

	// The backup directory is created lazily: a batch where nothing commits
	// leaves no trace on disk.
	var bdir *backup.BatchDir
	batchDir := func() (*backup.BatchDir, error) {
		if bdir != nil {
			return bdir, nil
		}
		var err error
		bdir, err = e.opts.Store.Begin(report.BatchID, ts)
		return bdir, err
	}

	var records []backup.Record
	for _, path := range batch.Paths() {
		outcome := e.applyFile(ctx, batchDir, path, batch.ForPath(path))
		if outcome.Applied() && outcome.Backup != nil {
			records = append(records, *outcome.Backup)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if len(records) > 0 {
		report.BackupDir = bdir.Dir
		if _, err := bdir.WriteManifest(records); err != nil {
			return report, errors.Errorf("writing batch manifest: %w", err)
		}
		e.opts.Undo.Record(report.BatchID, records)
	}

	return report, nil
}

// Undo restores the most recently committed batch as a unit.
func (e *Engine) Undo(ctx context.Context) ([]backup.Record, error) {
	return e.opts.Undo.UndoLast(ctx)
}

// applyFile walks one file through the state machine. Successive requests
// for the file chain: each one resolves against the buffer produced by the
// previous one, so later anchors may be introduced by earlier snippets.
func (e *Engine) applyFile(ctx context.Context, batchDir func() (*backup.BatchDir, error), path string, reqs []edit.Request) Outcome {
	logger := zerolog.Ctx(ctx)
	transition := func(s State) {
		logger.Debug().Str("file", path).Stringer("state", s).Msg("file state")
	}

	// Resolving: containment and protection guards run before anything else
	// touches disk.
	transition(StateResolving)

	abs, err := fsutil.ResolveInRoot(e.opts.Root, path)
	if err != nil {
		return Outcome{Path: path, State: StateSkipped, Reason: err}
	}
	if pattern, ok := e.protectedBy(path); ok {
		return Outcome{
			Path:   path,
			State:  StateSkipped,
			Reason: errors.Errorf("%q matches %q: %w", path, pattern, ErrProtectedPath),
		}
	}

	before, err := os.ReadFile(abs)
	if err != nil && !os.IsNotExist(err) {
		return Outcome{Path: path, State: StateFailed, Reason: errors.Errorf("reading %s: %w", path, err)}
	}

	// Mutating: chain the file's requests, each against the previous output.
	buf := before
	for i, req := range reqs {
		ranges, err := text.Resolve(buf, req.Anchor, req.Limit)
		if err != nil {
			return Outcome{
				Path:   path,
				State:  StateSkipped,
				Reason: errors.Errorf("edit %d: %w", i+1, err),
			}
		}
		transition(StateMutating)

		op, ok := req.Op.Mutation()
		if !ok {
			return Outcome{
				Path:   path,
				State:  StateSkipped,
				Reason: &edit.MalformedBatchError{Err: errors.Errorf("edit %d: unknown op %q", i+1, req.Op)},
			}
		}
		buf, err = text.Apply(buf, op, ranges, req.Snippet)
		if err != nil {
			return Outcome{Path: path, State: StateFailed, Reason: errors.Errorf("edit %d: %w", i+1, err)}
		}
	}

	if err := fsutil.CheckSize(buf, e.opts.MaxFileSize); err != nil {
		return Outcome{Path: path, State: StateSkipped, Reason: err}
	}

	diffText, err := diffview.Unified(path, before, buf, e.opts.ContextLines)
	if err != nil {
		return Outcome{Path: path, State: StateFailed, Reason: err}
	}

	// AwaitingApproval: synchronous decision by the caller.
	transition(StateAwaitingApproval)
	approved, err := e.opts.Approver(ctx, path, diffText)
	if err != nil {
		return Outcome{Path: path, State: StateFailed, Reason: errors.Errorf("approval for %s: %w", path, err), Diff: diffText}
	}
	if !approved {
		return Outcome{Path: path, State: StateSkipped, Reason: ErrUserDeclined, Diff: diffText}
	}

	// Committing: backup strictly before write. A file is never mutated
	// without a retrievable snapshot.
	transition(StateCommitting)
	bdir, err := batchDir()
	if err != nil {
		return Outcome{Path: path, State: StateFailed, Reason: &backup.BackupError{Path: path, Err: err}, Diff: diffText}
	}
	rec, err := bdir.Snapshot(ctx, path)
	if err != nil {
		return Outcome{Path: path, State: StateFailed, Reason: err, Diff: diffText}
	}
	if err := fsutil.WriteFileAtomic(abs, buf); err != nil {
		return Outcome{Path: path, State: StateFailed, Reason: err, Diff: diffText}
	}

	transition(StateCommitted)
	return Outcome{
		Path:   path,
		State:  StateCommitted,
		Before: before,
		After:  buf,
		Diff:   diffText,
		Backup: &rec,
	}
}

// protectedBy reports the first protected glob matching path.
func (e *Engine) protectedBy(path string) (string, bool) {
	for _, pattern := range e.opts.Protected {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return pattern, true
		}
	}
	return "", false
}
