package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInRoot(t *testing.T) {
	root := "/repo"

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{
			name: "plain_file",
			rel:  "main.go",
			want: "/repo/main.go",
		},
		{
			name: "nested_file",
			rel:  "pkg/text/anchor.go",
			want: "/repo/pkg/text/anchor.go",
		},
		{
			name:    "parent_traversal",
			rel:     "../outside.txt",
			wantErr: true,
		},
		{
			name:    "embedded_traversal",
			rel:     "pkg/../../outside.txt",
			wantErr: true,
		},
		{
			name:    "absolute_path",
			rel:     "/etc/passwd",
			wantErr: true,
		},
		{
			name:    "empty_path",
			rel:     "",
			wantErr: true,
		},
		{
			name:    "dot_resolves_to_root",
			rel:     ".",
			wantErr: true,
		},
		{
			name: "interior_dotdot_that_stays_inside",
			rel:  "pkg/../main.go",
			want: "/repo/main.go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInRoot(root, tt.rel)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrPathOutOfRoot)
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestCheckSize(t *testing.T) {
	require.NoError(t, CheckSize(make([]byte, 10), 0))
	require.NoError(t, CheckSize(make([]byte, MaxFileSize), 0))

	err := CheckSize(make([]byte, 300*1024), MaxFileSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "file.txt")

	err := WriteFileAtomic(target, []byte("first"))
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	// Overwrite keeps old-or-new semantics; afterwards only the new bytes exist.
	err = WriteFileAtomic(target, []byte("second"))
	require.NoError(t, err)

	got, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	// No temp files may survive a successful commit.
	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".smoledit-"), "leftover temp file %s", e.Name())
	}
}

func TestWriteFileAtomic_FailureLeavesTargetUntouched(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not constrain root")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(target, []byte("original"), 0644))

	// Make the directory unwritable so temp creation fails.
	require.NoError(t, os.Chmod(dir, 0555))
	defer os.Chmod(dir, 0755)

	err := WriteFileAtomic(target, []byte("mutated"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)

	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, target, werr.Path)

	require.NoError(t, os.Chmod(dir, 0755))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
