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

// Package workspace manages the scratch directory an analysis downloads into.
package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 Workspace is a temporary directory removed on Close unless kept
type Workspace struct {
	dir    string
	keep   bool
	closed bool
}

// 🏭 New creates a fresh temporary directory named after prefix
func New(prefix string, keep bool) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, errors.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir, keep: keep}, nil
}

// Dir returns the workspace root
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins elems onto the workspace root
func (w *Workspace) Path(elems ...string) string {
	return filepath.Join(append([]string{w.dir}, elems...)...)
}

// Kept reports whether Close leaves the directory in place
func (w *Workspace) Kept() bool {
	return w.keep
}

// 🧹 Close removes the directory. It is safe to call more than once.
func (w *Workspace) Close(ctx context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.keep {
		zerolog.Ctx(ctx).Info().Str("dir", w.dir).Msg("keeping workspace")
		return nil
	}

	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Errorf("removing workspace %s: %w", w.dir, err)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", w.dir).Msg("workspace removed")
	return nil
}
