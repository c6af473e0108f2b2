// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analyze walks a directory tree and aggregates per-language metrics.
//
// Every regular file is read, decoded as UTF-8, classified and scored. Files
// that cannot be decoded or classified are skipped without error; a single
// unreadable file never aborts the walk.
//
// Symlinks are never followed, including links to valid regular files in the
// same tree. They are not counted and never reach the Observer.
package analyze

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/tokenalyzer/pkg/classify"
	"github.com/walteh/tokenalyzer/pkg/report"
	"github.com/walteh/tokenalyzer/pkg/score"
)

var (
	// ErrNotDirectory is returned when the analysis root is not a directory
	ErrNotDirectory = errors.Base("analysis root is not a directory")
	// ErrInvalidPattern is returned for an ignore glob doublestar cannot parse
	ErrInvalidPattern = errors.Base("invalid ignore pattern")
)

// 📄 FileRecord is a file on its way through the engine; it is dropped once folded
type FileRecord struct {
	Path     string // slash path relative to the root
	AbsPath  string
	Content  string
	Language string
}

// 🏭 Engine classifies and scores the files under a root
type Engine struct {
	classifier classify.Classifier
	scorers    *score.Set
	opts       options
}

// 🏭 New creates an engine. The classifier and scorers are shared by every
// worker and must be safe for concurrent use.
func New(classifier classify.Classifier, scorers *score.Set, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{classifier: classifier, scorers: scorers, opts: o}
}

type job struct {
	seq  int
	abs  string
	rel  string
	size int64
}

// 🚀 Aggregate walks root and returns the per-language report.
//
// A cancelled context stops the walk between files; the partial report is
// returned marked incomplete together with an error wrapping ctx.Err().
func (e *Engine) Aggregate(ctx context.Context, root string) (*report.Report, error) {
	logger := zerolog.Ctx(ctx)

	root, err := e.checkRoot(root)
	if err != nil {
		return nil, err
	}
	for _, p := range e.opts.ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	logger.Debug().
		Str("root", root).
		Int("workers", e.opts.workers).
		Strs("metrics", e.scorers.Names()).
		Msg("starting analysis")

	var buckets *Buckets
	if e.opts.workers > 1 {
		buckets, err = e.parallel(ctx, root)
	} else {
		buckets, err = e.sequential(ctx, root)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn().Int("languages", buckets.Len()).Msg("analysis cancelled, returning partial report")
			return report.New(root, buckets.Entries(), true), errors.Errorf("analysis cancelled: %w", ctxErr)
		}
		return nil, err
	}

	logger.Debug().Int("languages", buckets.Len()).Msg("analysis complete")
	return report.New(root, buckets.Entries(), false), nil
}

func (e *Engine) checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Errorf("resolving root %q: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Errorf("resolving root %q: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.Errorf("reading root %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", errors.Errorf("%w: %q", ErrNotDirectory, root)
	}
	return resolved, nil
}

func (e *Engine) sequential(ctx context.Context, root string) (*Buckets, error) {
	buckets := NewBuckets(e.scorers.Names())
	err := e.walk(ctx, root, func(j job) {
		e.fold(ctx, buckets, j)
	})
	return buckets, err
}

// parallel numbers files in walk order so that merged buckets carry the same
// discovery order as a sequential run
func (e *Engine) parallel(ctx context.Context, root string) (*Buckets, error) {
	jobs := make(chan job, e.opts.workers*4)
	partials := make([]*Buckets, e.opts.workers)

	var g errgroup.Group
	for i := range partials {
		partial := NewBuckets(e.scorers.Names())
		partials[i] = partial
		g.Go(func() error {
			return e.work(ctx, jobs, partial)
		})
	}

	walkErr := e.walk(ctx, root, func(j job) {
		jobs <- j
	})
	close(jobs)
	workErr := g.Wait()

	buckets := NewBuckets(e.scorers.Names())
	for _, p := range partials {
		buckets.Merge(p)
	}
	if walkErr != nil {
		return buckets, walkErr
	}
	if workErr != nil {
		return buckets, errors.Errorf("analysing files: %w", workErr)
	}
	return buckets, nil
}

// work folds jobs into partial until the channel closes. Once ctx is done the
// remaining jobs are drained unread and the context error is returned.
func (e *Engine) work(ctx context.Context, jobs <-chan job, partial *Buckets) error {
	var skipped error
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			skipped = err
			continue
		}
		e.fold(ctx, partial, j)
	}
	return skipped
}

// walk calls emit for every regular file under root in lexical order.
// Symlinks and other non-regular entries are dropped before emit.
func (e *Engine) walk(ctx context.Context, root string, emit func(job)) error {
	logger := zerolog.Ctx(ctx)
	seq := 0

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			if path == root {
				return errors.Errorf("walking %q: %w", root, err)
			}
			return nil
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return errors.Errorf("relativizing %q: %w", path, relErr)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if e.pruned(ctx, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if e.pruned(ctx, rel, false) {
			return nil
		}

		var size int64
		if info, infoErr := d.Info(); infoErr == nil {
			size = info.Size()
		}

		emit(job{seq: seq, abs: path, rel: rel, size: size})
		seq++
		return nil
	})
}

func (e *Engine) pruned(ctx context.Context, rel string, dir bool) bool {
	if e.opts.skipVendor {
		vendorPath := rel
		if dir {
			vendorPath += "/"
		}
		if classify.IsVendor(vendorPath) {
			zerolog.Ctx(ctx).Trace().Str("path", rel).Msg("vendored path skipped")
			return true
		}
	}

	for _, pattern := range e.opts.ignore {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Trace().Str("path", rel).Str("pattern", pattern).Msg("path ignored by pattern")
			return true
		}
	}
	return false
}

// fold processes one file and adds it to buckets
func (e *Engine) fold(ctx context.Context, buckets *Buckets, j job) {
	rec, status := e.process(ctx, j)
	if status == Counted {
		buckets.Add(j.seq, rec.Language, e.scorers.ScoreAll(rec.Content))
	}
	if e.opts.observer != nil {
		e.opts.observer.FileVisited(FileVisit{Path: j.rel, Language: rec.Language, Size: j.size, Status: status})
	}
}

func (e *Engine) process(ctx context.Context, j job) (FileRecord, VisitStatus) {
	rec := FileRecord{Path: j.rel, AbsPath: j.abs}

	if e.opts.maxFileSize > 0 && j.size > e.opts.maxFileSize {
		return rec, SkippedTooLarge
	}

	raw, err := os.ReadFile(j.abs)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", j.rel).Msg("skipping unreadable file")
		return rec, SkippedUnreadable
	}

	if !utf8.Valid(raw) {
		return rec, SkippedUndecodable
	}
	rec.Content = string(raw)

	lang, ok := e.classifier.Classify(j.rel, raw)
	if !ok {
		return rec, SkippedUnclassified
	}
	rec.Language = lang

	return rec, Counted
}
