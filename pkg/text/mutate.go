package text

import (
	"gitlab.com/tozd/go/errors"
)

// Op is the kind of mutation applied at a resolved anchor.
type Op int

const (
	OpReplace Op = iota // substitute the matched range with the snippet
	OpInsertBefore      // insert the snippet before the matched range
	OpInsertAfter       // insert the snippet after the matched range
)

// String returns the wire-format name of the operation.
func (o Op) String() string {
	switch o {
	case OpReplace:
		return "replace"
	case OpInsertBefore:
		return "insert_before"
	case OpInsertAfter:
		return "insert_after"
	default:
		return "unknown"
	}
}

// Apply mutates buf at every resolved range and returns a new buffer; buf is
// never modified in place. ranges must be ascending and non-overlapping, as
// produced by Resolve. The same snippet is applied at every occurrence.
//
// Ranges are processed in descending offset order internally so that a
// mutation at a later offset never shifts the stored offset of an earlier
// one.
func Apply(buf []byte, op Op, ranges []Range, snippet string) ([]byte, error) {
	if len(ranges) == 0 {
		return nil, errors.New("no ranges to apply")
	}

	out := make([]byte, len(buf))
	copy(out, buf)

	ins := []byte(snippet)
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		if r.Start < 0 || r.End > len(buf) || r.Start > r.End {
			return nil, errors.Errorf("range [%d, %d) is outside buffer of %d bytes", r.Start, r.End, len(buf))
		}

		switch op {
		case OpReplace:
			out = splice(out, r.Start, r.End, ins)
		case OpInsertBefore:
			out = splice(out, r.Start, r.Start, ins)
		case OpInsertAfter:
			out = splice(out, r.End, r.End, ins)
		default:
			return nil, errors.Errorf("unsupported operation %q", op)
		}
	}
	return out, nil
}

// splice returns a new buffer with buf[start:end] replaced by ins.
func splice(buf []byte, start, end int, ins []byte) []byte {
	out := make([]byte, 0, len(buf)-(end-start)+len(ins))
	out = append(out, buf[:start]...)
	out = append(out, ins...)
	out = append(out, buf[end:]...)
	return out
}
