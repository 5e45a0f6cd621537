package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		buf        string
		anchor     string
		limit      int
		want       []Range
		wantErr    error
		wantCount  int
		wantALimit int
	}{
		{
			name:   "single_occurrence",
			buf:    "hello world",
			anchor: "world",
			limit:  1,
			want:   []Range{{Start: 6, End: 11}},
		},
		{
			name:    "not_found",
			buf:     "hello world",
			anchor:  "moon",
			limit:   1,
			wantErr: ErrAnchorNotFound,
		},
		{
			name:    "empty_buffer",
			buf:     "",
			anchor:  "x",
			limit:   1,
			wantErr: ErrAnchorNotFound,
		},
		{
			name:    "empty_anchor",
			buf:     "hello",
			anchor:  "",
			limit:   1,
			wantErr: ErrAnchorNotFound,
		},
		{
			name:       "ambiguous_three_limit_one",
			buf:        "a b a b a",
			anchor:     "a",
			limit:      1,
			wantErr:    ErrAnchorAmbiguous,
			wantCount:  3,
			wantALimit: 1,
		},
		{
			name:   "two_within_limit_three",
			buf:    "foo bar foo",
			anchor: "foo",
			limit:  3,
			want:   []Range{{Start: 0, End: 3}, {Start: 8, End: 11}},
		},
		{
			name:   "overlapping_candidates_scan_past_match",
			buf:    "aaaa",
			anchor: "aa",
			limit:  2,
			want:   []Range{{Start: 0, End: 2}, {Start: 2, End: 4}},
		},
		{
			name:   "zero_limit_treated_as_one",
			buf:    "x y",
			anchor: "x",
			limit:  0,
			want:   []Range{{Start: 0, End: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve([]byte(tt.buf), tt.anchor, tt.limit)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantCount > 0 {
					var ambig *AmbiguousAnchorError
					require.True(t, errors.As(err, &ambig))
					assert.Equal(t, tt.wantCount, ambig.Count)
					assert.Equal(t, tt.wantALimit, ambig.Limit)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DoesNotMutateBuffer(t *testing.T) {
	buf := []byte("anchor here")
	_, err := Resolve(buf, "anchor", 1)
	require.NoError(t, err)
	assert.Equal(t, "anchor here", string(buf))
}
