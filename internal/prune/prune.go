// Package prune removes recorded directories that no longer exist.
package prune

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/starford/cdir/internal/apperr"
	"github.com/starford/cdir/internal/store"
)

// Store is the subset of the store used by Missing.
type Store interface {
	ListRecentPaths(limit int) ([]store.Visit, error)
	DeleteVisit(path string) error
}

// Options configures a prune run.
type Options struct {
	// DryRun reports vanished directories without deleting them.
	DryRun bool
	// Concurrency bounds the parallel existence checks. Zero means 8.
	Concurrency int
	// Stat is used to check a directory; nil means os.Stat.
	Stat func(string) (fs.FileInfo, error)
	Logger *slog.Logger
}

// Missing checks every recent path and deletes those whose directory is
// gone. It returns the vanished paths in recency order. Paths that cannot
// be checked for a reason other than non-existence are kept.
func Missing(ctx context.Context, st Store, opts Options) ([]string, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	recent, err := st.ListRecentPaths(0)
	if err != nil {
		return nil, err
	}

	gone := make([]bool, len(recent))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, v := range recent {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			fi, err := opts.Stat(v.Path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				gone[i] = true
			case err != nil:
				opts.Logger.Warn("cannot check path", slog.String("path", v.Path), slog.String("error", err.Error()))
			case !fi.IsDir():
				gone[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}

	var removed []string
	for i, v := range recent {
		if !gone[i] {
			continue
		}
		if !opts.DryRun {
			if err := st.DeleteVisit(v.Path); err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return removed, err
			}
			opts.Logger.Info("pruned path", slog.String("path", v.Path))
		}
		removed = append(removed, v.Path)
	}
	return removed, nil
}
