package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPath(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"https", "https://github.com/alex/decks.git", filepath.Join("repos", "github.com", "alex", "decks"), false},
		{"https without suffix", "https://gitlab.com/alex/decks", filepath.Join("repos", "gitlab.com", "alex", "decks"), false},
		{"ssh", "git@github.com:alex/decks.git", filepath.Join("repos", "github.com", "alex", "decks"), false},
		{"local path", "/home/alex/decks", "", true},
		{"no repo path", "https://github.com", "", true},
		{"garbage", "not a url", "", true},
		{"ssh parent host", "git@..:../../etc/cron.d", "", true},
		{"https parent segments", "https://example.com/../../../../tmp/evil.git", "", true},
		{"encoded parent segments", "https://example.com/%2e%2e/%2e%2e/tmp/evil.git", "", true},
		{"dot host", "https://./alex/decks.git", "", true},
		{"ssh dot segment", "git@github.com:alex/./decks.git", "", true},
		{"parent inside path", "https://github.com/alex/../bob/decks.git", "", true},
		{"repeated slashes", "https://github.com//alex//decks.git", filepath.Join("repos", "github.com", "alex", "decks"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalPath("repos", tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalPathStaysUnderBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "repos")
	for _, u := range []string{
		"git@..:../../etc/cron.d",
		"https://example.com/../../../../tmp/evil.git",
		"git@github.com:../../outside.git",
	} {
		got, err := LocalPath(base, u)
		assert.ErrorIs(t, err, ErrUnsafePath, u)
		assert.Empty(t, got)
	}
}

// newOrigin creates a repository with a single committed deck file.
func newOrigin(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "deck.md", "Q: one\nA: 1\n")
	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestSyncClonesThenPulls(t *testing.T) {
	ctx := context.Background()
	origin, repo := newOrigin(t)
	checkout := filepath.Join(t.TempDir(), "checkout")

	require.NoError(t, Sync(ctx, origin, checkout, nil))
	assert.FileExists(t, filepath.Join(checkout, "deck.md"))

	// Nothing new upstream.
	require.NoError(t, Sync(ctx, origin, checkout, nil))

	commitFile(t, repo, origin, "more.md", "Q: two\nA: 2\n")
	require.NoError(t, Sync(ctx, origin, checkout, nil))
	assert.FileExists(t, filepath.Join(checkout, "more.md"))
}

func TestSyncFailsOnMissingRemote(t *testing.T) {
	checkout := filepath.Join(t.TempDir(), "checkout")
	err := Sync(context.Background(), filepath.Join(t.TempDir(), "missing"), checkout, nil)
	assert.Error(t, err)
}
