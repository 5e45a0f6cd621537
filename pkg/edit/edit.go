// Package edit defines the edit-batch data model shared with the upstream
// generation-service parser. The JSON key names (path, op, anchor, snippet,
// limit, rationale) are the boundary contract and must not change.
package edit

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/text"
)

// Op is the wire name of an edit operation.
type Op string

const (
	OpReplace      Op = "replace"
	OpInsertBefore Op = "insert_before"
	OpInsertAfter  Op = "insert_after"
)

// Mutation maps the wire operation onto the buffer-level operator.
func (o Op) Mutation() (text.Op, bool) {
	switch o {
	case OpReplace:
		return text.OpReplace, true
	case OpInsertBefore:
		return text.OpInsertBefore, true
	case OpInsertAfter:
		return text.OpInsertAfter, true
	default:
		return 0, false
	}
}

// Request is one localized modification to one file. Immutable once
// constructed; the engine never writes back into it.
type Request struct {
	// Path is the repository-relative path of the file to edit.
	Path string `json:"path" validate:"required"`
	// Op selects the mutation operator.
	Op Op `json:"op" validate:"required,oneof=replace insert_before insert_after"`
	// Anchor is the exact substring that locates the edit.
	Anchor string `json:"anchor" validate:"required"`
	// Snippet is the replacement or insertion text. May be empty: an empty
	// snippet with op=replace is a pure deletion.
	Snippet string `json:"snippet"`
	// Limit caps how many occurrences of Anchor may exist. Defaults to 1.
	Limit int `json:"limit" validate:"min=1"`
	// Rationale is display-only free text from the generation service.
	Rationale string `json:"rationale,omitempty"`
}

// Batch is an ordered sequence of requests produced from one generation-
// service response. Order is execution order within a file.
type Batch struct {
	Edits []Request `json:"edits" validate:"dive"`
}

// ErrMalformedBatch is returned when a batch violates the schema. A
// malformed batch is rejected before any file is touched.
var ErrMalformedBatch = errors.New("malformed edit batch")

// MalformedBatchError carries the underlying schema violation.
type MalformedBatchError struct {
	Err error
}

func (e *MalformedBatchError) Error() string {
	return fmt.Sprintf("malformed edit batch: %v", e.Err)
}

func (e *MalformedBatchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedBatch) match.
func (e *MalformedBatchError) Is(target error) bool { return target == ErrMalformedBatch }

var validate = validator.New()

// Validate checks the whole batch against the schema. Limits are defaulted
// before validation, so a zero Limit never rejects.
func (b *Batch) Validate() error {
	b.applyDefaults()
	if err := validate.Struct(b); err != nil {
		return &MalformedBatchError{Err: err}
	}
	return nil
}

func (b *Batch) applyDefaults() {
	for i := range b.Edits {
		if b.Edits[i].Limit == 0 {
			b.Edits[i].Limit = 1
		}
		if b.Edits[i].Op == "" {
			b.Edits[i].Op = OpReplace
		}
	}
}

// Paths returns the distinct file paths touched by the batch, in first-seen
// order.
func (b *Batch) Paths() []string {
	seen := make(map[string]bool, len(b.Edits))
	var paths []string
	for _, e := range b.Edits {
		if !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// ForPath returns the batch's requests for one file, preserving order.
func (b *Batch) ForPath(path string) []Request {
	var reqs []Request
	for _, e := range b.Edits {
		if e.Path == path {
			reqs = append(reqs, e)
		}
	}
	return reqs
}
