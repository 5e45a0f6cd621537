// Package diffview renders line-based unified diffs between the pristine and
// mutated versions of a file buffer. The output is display-only: it is shown
// to the user for approval and never parsed back as input.
package diffview

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-diff/diff"
	"gitlab.com/tozd/go/errors"
)

// DefaultContextLines is the context window around each changed region.
const DefaultContextLines = 3

const (
	opEqual  = ' '
	opDelete = '-'
	opInsert = '+'
)

// lineOp is a single diff line: kind is ' ', '-' or '+', text includes the
// trailing newline.
type lineOp struct {
	kind byte
	text string
}

// Build computes the line-based diff between before and after and groups it
// into hunks with contextLines of context. path is the repository-relative
// path used in the a/ and b/ headers. Returns nil when the buffers are
// line-identical.
func Build(path string, before, after []byte, contextLines int) *diff.FileDiff {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}

	ops := lineOps(string(before), string(after))
	hunks := buildHunks(ops, contextLines)
	if len(hunks) == 0 {
		return nil
	}

	return &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks,
	}
}

// Unified renders the unified diff text for a file. Identical buffers yield
// the empty string. Identical inputs always produce byte-identical output.
func Unified(path string, before, after []byte, contextLines int) (string, error) {
	fd := Build(path, before, after, contextLines)
	if fd == nil {
		return "", nil
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", errors.Errorf("printing file diff: %w", err)
	}
	return string(out), nil
}

// lineOps computes a minimal line-level edit script. The diff runs over
// lines, not characters: buffers are re-encoded so that every distinct line
// becomes one rune before the edit distance pass.
func lineOps(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	// A timeout would let slow machines cut the search short and produce a
	// different (valid but non-minimal) script. Output must be deterministic.
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var ops []lineOp
	for _, d := range diffs {
		var kind byte
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = opEqual
		case diffmatchpatch.DiffDelete:
			kind = opDelete
		case diffmatchpatch.DiffInsert:
			kind = opInsert
		}
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{kind: kind, text: line})
		}
	}
	return ops
}

// splitLines splits s into newline-terminated lines. A final line without a
// trailing newline is normalized to carry one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}
	return lines
}

// buildHunks groups the edit script into hunks, each padded with up to ctx
// context lines. Changed regions whose gap is small enough to share context
// are merged into one hunk.
func buildHunks(ops []lineOp, ctx int) []*diff.Hunk {
	var hunks []*diff.Hunk

	origLine, newLine := 1, 1 // line number of ops[i] in each version
	consumed := 0             // ops before this index belong to earlier hunks

	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			origLine++
			newLine++
			i++
			continue
		}

		// Leading context, bounded by what earlier hunks already consumed.
		lead := ctx
		if lead > i-consumed {
			lead = i - consumed
		}
		start := i - lead

		// Extend until a run of equals long enough to close this hunk and
		// still leave context for the next one.
		end := len(ops)
		equalRun := 0
		for j := i; j < len(ops); j++ {
			if ops[j].kind == opEqual {
				equalRun++
				if equalRun > 2*ctx {
					end = j - equalRun + ctx + 1
					break
				}
			} else {
				equalRun = 0
			}
		}
		if end == len(ops) {
			// Trim trailing context down to ctx lines.
			trailing := 0
			for k := end - 1; k >= i && ops[k].kind == opEqual; k-- {
				trailing++
			}
			if trailing > ctx {
				end -= trailing - ctx
			}
		}

		var body bytes.Buffer
		origStart := origLine - lead
		newStart := newLine - lead
		origCount, newCount := 0, 0
		for k := start; k < end; k++ {
			body.WriteByte(ops[k].kind)
			body.WriteString(ops[k].text)
			switch ops[k].kind {
			case opEqual:
				origCount++
				newCount++
				if k >= i {
					origLine++
					newLine++
				}
			case opDelete:
				origCount++
				if k >= i {
					origLine++
				}
			case opInsert:
				newCount++
				if k >= i {
					newLine++
				}
			}
		}

		// Unified convention: a zero-length side anchors on the previous line.
		if origCount == 0 {
			origStart--
		}
		if newCount == 0 {
			newStart--
		}

		hunks = append(hunks, &diff.Hunk{
			OrigStartLine: int32(origStart),
			OrigLines:     int32(origCount),
			NewStartLine:  int32(newStart),
			NewLines:      int32(newCount),
			Body:          body.Bytes(),
		})

		consumed = end
		i = end
	}

	return hunks
}
