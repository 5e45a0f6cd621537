package diffview

import (
	"strings"
	"testing"

	"github.com/sourcegraph/go-diff/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnified_SingleLineReplacement(t *testing.T) {
	before := []byte("<html>\n<body>\n<button class=\"btn\">\n</body>\n</html>\n")
	after := []byte("<html>\n<body>\n<button class=\"btn rounded bg-blue-600\">\n</body>\n</html>\n")

	fd := Build("index.html", before, after, DefaultContextLines)
	require.NotNil(t, fd)
	assert.Equal(t, "a/index.html", fd.OrigName)
	assert.Equal(t, "b/index.html", fd.NewName)
	require.Len(t, fd.Hunks, 1)

	body := string(fd.Hunks[0].Body)
	assert.Equal(t, 1, strings.Count(body, "-<button"))
	assert.Equal(t, 1, strings.Count(body, "+<button"))

	out, err := Unified("index.html", before, after, DefaultContextLines)
	require.NoError(t, err)
	assert.Contains(t, out, "--- a/index.html")
	assert.Contains(t, out, "+++ b/index.html")
	assert.Contains(t, out, "-<button class=\"btn\">\n")
	assert.Contains(t, out, "+<button class=\"btn rounded bg-blue-600\">\n")
}

func TestUnified_IdenticalBuffers(t *testing.T) {
	buf := []byte("same\ncontent\n")
	out, err := Unified("f.txt", buf, buf, DefaultContextLines)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Nil(t, Build("f.txt", buf, buf, DefaultContextLines))
}

func TestUnified_Deterministic(t *testing.T) {
	before := []byte("a\nb\nc\nd\ne\nf\ng\nh\n")
	after := []byte("a\nB\nc\nd\ne\nf\nG\nh\n")

	first, err := Unified("f.txt", before, after, DefaultContextLines)
	require.NoError(t, err)
	second, err := Unified("f.txt", before, after, DefaultContextLines)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_HunkGrouping(t *testing.T) {
	// Two edits separated by far more than 2*ctx unchanged lines must land in
	// separate hunks; nearby edits share one hunk.
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	before := strings.Join(lines, "\n") + "\n"

	mutated := append([]string(nil), lines...)
	mutated[2] = "changed-top"
	mutated[27] = "changed-bottom"
	after := strings.Join(mutated, "\n") + "\n"

	fd := Build("f.txt", []byte(before), []byte(after), 3)
	require.NotNil(t, fd)
	assert.Len(t, fd.Hunks, 2)

	// Same edits with a giant context window collapse into one hunk.
	fd = Build("f.txt", []byte(before), []byte(after), 50)
	require.NotNil(t, fd)
	assert.Len(t, fd.Hunks, 1)
}

func TestBuild_InsertionIntoEmptyFile(t *testing.T) {
	fd := Build("new.txt", nil, []byte("one\ntwo\n"), 3)
	require.NotNil(t, fd)
	require.Len(t, fd.Hunks, 1)

	h := fd.Hunks[0]
	assert.Equal(t, int32(0), h.OrigLines)
	assert.Equal(t, int32(2), h.NewLines)
	assert.Equal(t, "+one\n+two\n", string(h.Body))
}

// replay applies the hunks of a file diff back onto the original buffer. The
// engine never does this (diffs are display-only), but it pins down that the
// rendered hunks and the committed bytes agree exactly.
func replay(t *testing.T, fd *diff.FileDiff, before []byte) []byte {
	t.Helper()

	orig := splitLines(string(before))
	var out []string
	cursor := 0 // index into orig of the next uncopied line

	for _, h := range fd.Hunks {
		start := int(h.OrigStartLine) - 1
		if h.OrigLines == 0 {
			start = int(h.OrigStartLine)
		}
		require.GreaterOrEqual(t, start, cursor)
		out = append(out, orig[cursor:start]...)
		cursor = start

		for _, line := range splitLines(string(h.Body)) {
			switch line[0] {
			case opEqual:
				require.Equal(t, orig[cursor], line[1:], "context mismatch")
				out = append(out, line[1:])
				cursor++
			case opDelete:
				require.Equal(t, orig[cursor], line[1:], "removal mismatch")
				cursor++
			case opInsert:
				out = append(out, line[1:])
			}
		}
	}
	out = append(out, orig[cursor:]...)
	return []byte(strings.Join(out, ""))
}

func TestReplayReproducesMutatedBuffer(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
	}{
		{
			name:   "single_replacement",
			before: "a\nb\nc\nd\ne\nf\ng\n",
			after:  "a\nb\nc\nX\ne\nf\ng\n",
		},
		{
			name:   "two_distant_edits",
			before: "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\n19\n20\n",
			after:  "1\nTWO\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\nNINETEEN\n20\n",
		},
		{
			name:   "insertion_and_deletion",
			before: "keep\ndrop\nkeep\n",
			after:  "keep\nkeep\nadded\n",
		},
		{
			name:   "everything_replaced",
			before: "old\n",
			after:  "entirely\nnew\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := Build("f.txt", []byte(tt.before), []byte(tt.after), DefaultContextLines)
			require.NotNil(t, fd)
			got := replay(t, fd, []byte(tt.before))
			assert.Equal(t, tt.after, string(got))
		})
	}
}

func TestColorize(t *testing.T) {
	out, err := Unified("f.txt", []byte("a\n"), []byte("b\n"), DefaultContextLines)
	require.NoError(t, err)

	colored := Colorize(out)
	require.NotEmpty(t, colored)

	// Stripping colors must give back the exact diff. With color disabled
	// (NO_COLOR or non-tty test runs) the strings are already equal.
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(colored, "\n"))
	assert.Empty(t, Colorize(""))
}
