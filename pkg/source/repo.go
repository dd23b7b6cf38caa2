// Package source keeps a local clone of the operator repository at a pinned tag.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// Repo is one pinned checkout
type Repo struct {
	url      string
	path     string
	tag      string
	progress io.Writer
	log      logrus.FieldLogger
}

// New creates a Repo. progress receives clone output and may be nil.
func New(url, path, tag string, progress io.Writer, log logrus.FieldLogger) *Repo {
	return &Repo{url: url, path: path, tag: tag, progress: progress, log: log}
}

// Path returns the clone directory
func (r *Repo) Path() string {
	return r.path
}

// Ensure clones the repository if its path is absent, then checks out the tag.
// An existing path is never re-cloned or fetched so local changes survive.
func (r *Repo) Ensure(ctx context.Context) (cloned bool, err error) {
	log := r.log.WithFields(logrus.Fields{"path": r.path, "tag": r.tag})

	_, err = os.Stat(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WithField("url", r.url).Info("cloning operator repository")
		if _, err := git.PlainCloneContext(ctx, r.path, false, &git.CloneOptions{
			URL:      r.url,
			Progress: r.progress,
		}); err != nil {
			return false, fmt.Errorf("failed to clone %s: %w", r.url, err)
		}
		cloned = true
	case err != nil:
		return false, fmt.Errorf("failed to stat %s: %w", r.path, err)
	default:
		log.Info("operator repository already present, not cloning")
	}

	if err := r.checkout(); err != nil {
		return cloned, err
	}
	return cloned, nil
}

// checkout moves HEAD (detached) to the commit the tag points at
func (r *Repo) checkout() error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		return fmt.Errorf("failed to open repository %s: %w", r.path, err)
	}

	hash, err := r.tagCommit(repo)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree %s: %w", r.path, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash}); err != nil {
		return fmt.Errorf("failed to check out %s: %w", r.tag, err)
	}

	r.log.WithFields(logrus.Fields{"tag": r.tag, "commit": hash.String()[:12]}).Info("checked out operator release")
	return nil
}

// tagCommit resolves lightweight and annotated tags to their commit
func (r *Repo) tagCommit(repo *git.Repository) (plumbing.Hash, error) {
	ref, err := repo.Tag(r.tag)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to find tag %s in %s: %w", r.tag, r.path, err)
	}

	tag, err := repo.TagObject(ref.Hash())
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash(), nil
	case err != nil:
		return plumbing.ZeroHash, fmt.Errorf("failed to read tag %s: %w", r.tag, err)
	}

	commit, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("tag %s does not point at a commit: %w", r.tag, err)
	}
	return commit.Hash, nil
}
