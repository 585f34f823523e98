// internal/gitmeta/gitmeta_test.go
package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
)

// initRepo creates a repository with one commit and returns its hash.
func initRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("module.exports = {};\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("index.js")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestHeadCommit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := initRepo(t, dir)

	sub := filepath.Join(dir, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got, err := HeadCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = HeadCommit(sub)
	require.NoError(t, err)
	assert.Equal(t, want, got, "nested directories resolve to the enclosing repository")
}

func TestHeadCommit_NotRepository(t *testing.T) {
	t.Parallel()
	_, err := HeadCommit(t.TempDir())
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)
}

func TestEnrich(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := initRepo(t, dir)

	testCases := []struct {
		name     string
		rc       schemas.RunContext
		expected string
	}{
		{"Fills Missing Hash", schemas.RunContext{ProjectRoot: dir}, want},
		{"Keeps Caller Hash", schemas.RunContext{ProjectRoot: dir, Metadata: schemas.Metadata{CommitHash: "abc123"}}, "abc123"},
		{"No Root", schemas.RunContext{}, ""},
		{"Not A Repository", schemas.RunContext{ProjectRoot: t.TempDir()}, ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rc := tc.rc
			Enrich(zaptest.NewLogger(t), &rc)
			assert.Equal(t, tc.expected, rc.Metadata.CommitHash)
		})
	}
}
