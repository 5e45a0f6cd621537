package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome FileOutcome
		want    []string
	}{
		{
			name:    "applied",
			outcome: FileOutcome{Path: "src/main.go", Applied: true, Hunks: 2},
			want:    []string{"✓", "src/main.go", "applied"},
		},
		{
			name:    "skipped_with_reason",
			outcome: FileOutcome{Path: "a.txt", Skipped: true, Reason: "anchor not found in file"},
			want:    []string{"-", "a.txt", "skipped", "anchor not found in file"},
		},
		{
			name:    "failed",
			outcome: FileOutcome{Path: "b.txt", Failed: true, Reason: "write failed"},
			want:    []string{"✗", "b.txt", "failed"},
		},
		{
			name:    "restored",
			outcome: FileOutcome{Path: "c.txt", Restored: true},
			want:    []string{"⟳", "c.txt", "restored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			logger := New(&console, zerolog.Disabled)

			logger.LogFileOutcome(context.Background(), tt.outcome)

			out := console.String()
			for _, fragment := range tt.want {
				assert.Contains(t, out, fragment)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	var console bytes.Buffer
	logger := New(&console, zerolog.Disabled)

	ctx := NewContext(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestConsoleMessages(t *testing.T) {
	var console bytes.Buffer
	logger := New(&console, zerolog.Disabled)

	logger.Header("applying 2 edits")
	logger.Success("batch committed")
	logger.Warning("1 file skipped")
	logger.Error("1 file failed")
	logger.Infof("backup at %s", ".smoledit/backups/123")

	out := console.String()
	assert.Contains(t, out, "smoledit")
	assert.Contains(t, out, "applying 2 edits")
	assert.Contains(t, out, "batch committed")
	assert.Contains(t, out, "1 file skipped")
	assert.Contains(t, out, "1 file failed")
	assert.Contains(t, out, ".smoledit/backups/123")
}
