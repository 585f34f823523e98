// internal/gitmeta/gitmeta.go
package gitmeta

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
)

// HeadCommit returns the hash HEAD points at in the repository that contains
// dir. Parent directories are searched for the .git directory.
func HeadCommit(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("could not open repository at %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Enrich records the project's HEAD commit in rc when the caller did not
// supply one. It is best effort: lookup problems are logged and ignored.
func Enrich(logger *zap.Logger, rc *schemas.RunContext) {
	if rc.ProjectRoot == "" || rc.Metadata.CommitHash != "" {
		return
	}

	hash, err := HeadCommit(rc.ProjectRoot)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			logger.Debug("Project root is not a git repository.", zap.String("root", rc.ProjectRoot))
		} else {
			logger.Warn("Could not read git HEAD.", zap.String("root", rc.ProjectRoot), zap.Error(err))
		}
		return
	}
	rc.Metadata.CommitHash = hash
}
