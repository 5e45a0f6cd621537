package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		buf     string
		op      Op
		anchor  string
		limit   int
		snippet string
		want    string
		wantErr string
	}{
		{
			name:    "replace_single",
			buf:     `<button class="btn">`,
			op:      OpReplace,
			anchor:  `<button class="btn">`,
			limit:   1,
			snippet: `<button class="btn rounded bg-blue-600">`,
			want:    `<button class="btn rounded bg-blue-600">`,
		},
		{
			name:    "replace_all_occurrences_within_limit",
			buf:     "foo bar foo baz foo",
			op:      OpReplace,
			anchor:  "foo",
			limit:   3,
			snippet: "qux",
			want:    "qux bar qux baz qux",
		},
		{
			name:    "replace_with_empty_snippet_deletes",
			buf:     "keep DROP keep",
			op:      OpReplace,
			anchor:  " DROP",
			limit:   1,
			snippet: "",
			want:    "keep keep",
		},
		{
			name:    "insert_before",
			buf:     "func main() {}",
			op:      OpInsertBefore,
			anchor:  "func main",
			limit:   1,
			snippet: "// entrypoint\n",
			want:    "// entrypoint\nfunc main() {}",
		},
		{
			name:    "insert_after",
			buf:     "import (\n)",
			op:      OpInsertAfter,
			anchor:  "import (",
			limit:   1,
			snippet: "\n\t\"os\"",
			want:    "import (\n\t\"os\"\n)",
		},
		{
			name:    "insert_after_multiple_occurrences",
			buf:     "a|a|a",
			op:      OpInsertAfter,
			anchor:  "a",
			limit:   3,
			snippet: "!",
			want:    "a!|a!|a!",
		},
		{
			name:    "snippet_longer_than_anchor_shifts_later_offsets",
			buf:     "x x x",
			op:      OpReplace,
			anchor:  "x",
			limit:   3,
			snippet: "xxxx",
			want:    "xxxx xxxx xxxx",
		},
		{
			name:    "no_ranges",
			buf:     "anything",
			op:      OpReplace,
			anchor:  "missing",
			limit:   1,
			wantErr: "no ranges",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ranges []Range
			if tt.wantErr == "" {
				var err error
				ranges, err = Resolve([]byte(tt.buf), tt.anchor, tt.limit)
				require.NoError(t, err)
			}

			got, err := Apply([]byte(tt.buf), tt.op, ranges, tt.snippet)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestApply_ReturnsFreshBuffer(t *testing.T) {
	buf := []byte("one two")
	ranges, err := Resolve(buf, "two", 1)
	require.NoError(t, err)

	out, err := Apply(buf, OpReplace, ranges, "three")
	require.NoError(t, err)

	assert.Equal(t, "one two", string(buf), "input buffer must stay pristine")
	assert.Equal(t, "one three", string(out))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "replace", OpReplace.String())
	assert.Equal(t, "insert_before", OpInsertBefore.String())
	assert.Equal(t, "insert_after", OpInsertAfter.String())
	assert.Equal(t, "unknown", Op(42).String())
}
