// Package text locates anchors inside file buffers and applies edit
// operations to them. Everything in this package is a pure function of its
// inputs; disk access and approval flow live in pkg/engine.
package text

import (
	"bytes"
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🔍 Range is a half-open byte-offset range [Start, End) inside a buffer.
type Range struct {
	Start int
	End   int
}

// ErrAnchorNotFound is returned when the anchor has zero occurrences.
var ErrAnchorNotFound = errors.New("anchor not found in file")

// ErrAnchorAmbiguous is the base error for ambiguous anchors. Use errors.As
// with *AmbiguousAnchorError to recover the occurrence count and limit.
var ErrAnchorAmbiguous = errors.New("anchor is ambiguous")

// AmbiguousAnchorError reports an anchor that occurs more often than the
// request allows.
type AmbiguousAnchorError struct {
	Count int // occurrences found
	Limit int // occurrences allowed
}

func (e *AmbiguousAnchorError) Error() string {
	return fmt.Sprintf("anchor is ambiguous: %d occurrences exceed limit %d", e.Count, e.Limit)
}

// Is makes errors.Is(err, ErrAnchorAmbiguous) match.
func (e *AmbiguousAnchorError) Is(target error) bool {
	return target == ErrAnchorAmbiguous
}

// Resolve returns the byte ranges of every occurrence of anchor in buf, in
// left-to-right order. The match is an exact substring match: no regex, no
// whitespace normalization.
//
//   - zero occurrences        → ErrAnchorNotFound
//   - more than limit         → *AmbiguousAnchorError
//   - between 1 and limit     → all occurrences, ascending by offset
func Resolve(buf []byte, anchor string, limit int) ([]Range, error) {
	if anchor == "" {
		return nil, errors.Errorf("anchor must not be empty: %w", ErrAnchorNotFound)
	}
	if limit < 1 {
		limit = 1
	}

	needle := []byte(anchor)
	var ranges []Range
	for off := 0; ; {
		idx := bytes.Index(buf[off:], needle)
		if idx < 0 {
			break
		}
		start := off + idx
		ranges = append(ranges, Range{Start: start, End: start + len(needle)})
		// Occurrences never overlap: scanning resumes after the full match.
		off = start + len(needle)
	}

	if len(ranges) == 0 {
		return nil, ErrAnchorNotFound
	}
	if len(ranges) > limit {
		return nil, &AmbiguousAnchorError{Count: len(ranges), Limit: limit}
	}
	return ranges, nil
}
