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

// Package fsutil contains the disk-facing primitives of the edit engine:
// repository-root path containment, the size ceiling, and atomic writes.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// MaxFileSize is the ceiling for a mutated buffer. Mutations that would grow
// a file past this are rejected before any disk access.
const MaxFileSize = 256 * 1024

// ErrPathOutOfRoot is returned when a request path resolves outside the
// repository root.
var ErrPathOutOfRoot = errors.New("path escapes repository root")

// ErrFileTooLarge is returned when a mutated buffer exceeds the size ceiling.
var ErrFileTooLarge = errors.New("file exceeds size ceiling")

// ErrWriteFailed is the base error for commit-time I/O failures. Use
// errors.As with *WriteError to recover the path and cause.
var ErrWriteFailed = errors.New("write failed")

// WriteError wraps an I/O failure during an atomic write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrWriteFailed) match.
func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }

// ResolveInRoot resolves rel against root and guarantees the result stays
// strictly inside root. Absolute paths and ".." traversal are rejected with
// ErrPathOutOfRoot. The check is lexical; root is expected to already be
// absolute and clean.
func ResolveInRoot(root, rel string) (string, error) {
	if rel == "" {
		return "", errors.Errorf("%q: empty path: %w", rel, ErrPathOutOfRoot)
	}
	if filepath.IsAbs(rel) {
		return "", errors.Errorf("%q: absolute paths are not allowed: %w", rel, ErrPathOutOfRoot)
	}

	abs := filepath.Join(root, rel)
	cleanRoot := filepath.Clean(root)
	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", errors.Errorf("%q resolves outside %q: %w", rel, root, ErrPathOutOfRoot)
	}
	if abs == cleanRoot {
		return "", errors.Errorf("%q resolves to the repository root itself: %w", rel, ErrPathOutOfRoot)
	}
	return abs, nil
}

// CheckSize validates a mutated buffer against the size ceiling.
func CheckSize(buf []byte, max int64) error {
	if max <= 0 {
		max = MaxFileSize
	}
	if int64(len(buf)) > max {
		return errors.Errorf("%d bytes exceed ceiling of %d: %w", len(buf), max, ErrFileTooLarge)
	}
	return nil
}

// WriteFileAtomic commits content to path without ever exposing a
// half-written file: the content goes to a temp file in the same directory
// (same volume, so the rename is atomic) which is then renamed over the
// target. The temp file is removed on every failure path.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".smoledit-*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// CopyFile copies src to dst byte-for-byte, creating parent directories for
// dst as needed.
func CopyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	destination, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}
	return nil
}
