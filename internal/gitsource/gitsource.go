// Package gitsource keeps local checkouts of git deck sources up to date.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does. Transfer progress is written to
// progress, which may be nil.
func Sync(ctx context.Context, repoURL, localPath string, progress io.Writer) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		slog.Info("Cloning repository", "url", repoURL, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      repoURL,
			Progress: progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		slog.Info("Clone successful", "url", repoURL)
	case err == nil:
		slog.Info("Pulling latest changes", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Progress:   progress,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		slog.Info("Pull successful (or already up-to-date)", "path", localPath)
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	return nil
}

// ErrUnsafePath is returned for repository URLs whose checkout directory
// would fall outside the base directory.
var ErrUnsafePath = errors.New("repository path escapes the checkout directory")

// LocalPath maps a repository URL to its checkout directory under baseDir,
// e.g. https://github.com/a/b.git and git@github.com:a/b.git both map to
// baseDir/github.com/a/b.
func LocalPath(baseDir, repoURL string) (string, error) {
	host, repoPath, err := splitURL(repoURL)
	if err != nil {
		return "", err
	}

	segments := []string{host}
	for _, seg := range strings.Split(strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git"), "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) < 2 {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	for _, seg := range segments {
		if seg == "." || seg == ".." || strings.ContainsRune(seg, '\\') {
			return "", fmt.Errorf("%s: %w", repoURL, ErrUnsafePath)
		}
	}

	p := filepath.Join(append([]string{baseDir}, segments...)...)
	rel, err := filepath.Rel(baseDir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", repoURL, ErrUnsafePath)
	}
	return p, nil
}

// splitURL returns the host and repository path of an http(s) or scp-style
// ssh URL.
func splitURL(repoURL string) (string, string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err == nil && (parsedURL.Scheme == "https" || parsedURL.Scheme == "http") {
		if parsedURL.Host == "" {
			return "", "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return parsedURL.Host, parsedURL.Path, nil
	}
	if user, rest, ok := strings.Cut(repoURL, "@"); ok && user != "" {
		host, repoPath, ok := strings.Cut(rest, ":")
		if ok && host != "" && repoPath != "" && !strings.Contains(repoPath, ":") {
			return host, repoPath, nil
		}
	}
	return "", "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
