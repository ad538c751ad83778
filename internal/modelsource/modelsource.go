package modelsource

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Fetch makes the model artifacts from repoURL available locally and
// returns the directory holding them. The repository is cloned into
// cacheDir on first use and pulled on subsequent startups, so the process
// always loads the latest published artifacts.
func Fetch(repoURL, cacheDir string) (string, error) {
	localPath, err := localPathFor(cacheDir, repoURL)
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(localPath); os.IsNotExist(statErr) {
		slog.Info("Cloning model repository", "url", repoURL, "path", localPath)
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: repoURL}); err != nil {
			return "", fmt.Errorf("failed to clone model repo %s: %w", repoURL, err)
		}
		return localPath, nil
	} else if statErr != nil {
		return "", fmt.Errorf("error checking model cache path %s: %w", localPath, statErr)
	}

	slog.Info("Pulling latest model artifacts", "path", localPath)
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open cached model repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree at %s: %w", localPath, err)
	}
	if err := worktree.Pull(&git.PullOptions{RemoteName: "origin"}); err != nil && err != git.NoErrAlreadyUpToDate {
		return "", fmt.Errorf("failed to pull model repo at %s: %w", localPath, err)
	}

	return localPath, nil
}

// localPathFor derives a stable cache directory name from the repo URL.
func localPathFor(cacheDir, repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("invalid model repo URL %s: %w", repoURL, err)
	}
	name := strings.TrimSuffix(filepath.Base(u.Path), ".git")
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive cache name from model repo URL %s", repoURL)
	}
	return filepath.Join(cacheDir, name), nil
}
