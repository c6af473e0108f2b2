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

// Package extract unpacks a downloaded repository archive into a directory.
package extract

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tokenalyzer/pkg/fetch"
)

var (
	// ErrUnsafePath is returned for an entry that would land outside the destination
	ErrUnsafePath = errors.Base("archive entry escapes destination")
	// ErrUnsupported is returned for a file that is neither zip nor gzip
	ErrUnsupported = errors.Base("unsupported archive format")
)

// 📦 Archive extracts the zip or tar.gz at path into dest and returns the
// directory to analyse: the single top-level directory when the archive has
// exactly one (GitHub's "repo-branch/"), dest otherwise.
//
// Symlink entries are not materialised.
func Archive(ctx context.Context, path, dest string) (string, error) {
	kind, err := sniff(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", errors.Errorf("creating %s: %w", dest, err)
	}

	var count int
	switch kind {
	case fetch.KindZip:
		count, err = extractZip(ctx, path, dest)
	case fetch.KindGzip:
		count, err = extractTarGz(ctx, path, dest)
	default:
		return "", errors.Errorf("%w: %s", ErrUnsupported, path)
	}
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Debug().Str("dest", dest).Int("files", count).Str("kind", string(kind)).Msg("archive extracted")

	return Root(dest)
}

func sniff(path string) (fetch.Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Errorf("reading archive header: %w", err)
	}
	return fetch.Detect(head[:n]), nil
}

// Root returns the single top-level directory of dir, or dir itself
func Root(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", dir, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

// target joins name onto dest and rejects anything that escapes it
func target(dest, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(name, "/") {
		return "", errors.Errorf("%w: %q", ErrUnsafePath, name)
	}
	full := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return full, nil
}

func extractZip(ctx context.Context, path, dest string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, errors.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	count := 0
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return count, errors.Errorf("extracting zip: %w", err)
		}

		full, err := target(dest, zf.Name)
		if err != nil {
			return count, err
		}

		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(full, 0o755); err != nil {
				return count, errors.Errorf("creating %s: %w", full, err)
			}
		case mode.IsRegular():
			rc, err := zf.Open()
			if err != nil {
				return count, errors.Errorf("opening %s: %w", zf.Name, err)
			}
			err = writeFile(full, rc, mode)
			rc.Close()
			if err != nil {
				return count, err
			}
			count++
		default:
			zerolog.Ctx(ctx).Trace().Str("entry", zf.Name).Msg("skipping non-regular zip entry")
		}
	}
	return count, nil
}

func extractTarGz(ctx context.Context, path, dest string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, errors.Errorf("opening gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, errors.Errorf("extracting tarball: %w", err)
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, errors.Errorf("reading tarball: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			continue
		}

		full, err := target(dest, hdr.Name)
		if err != nil {
			return count, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(full, 0o755); err != nil {
				return count, errors.Errorf("creating %s: %w", full, err)
			}
		case tar.TypeReg:
			if err := writeFile(full, tr, hdr.FileInfo().Mode()); err != nil {
				return count, err
			}
			count++
		default:
			zerolog.Ctx(ctx).Trace().Str("entry", hdr.Name).Msg("skipping non-regular tar entry")
		}
	}
}

func writeFile(full string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Errorf("creating %s: %w", filepath.Dir(full), err)
	}
	perm := mode.Perm() | 0o600
	out, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Errorf("creating %s: %w", full, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Errorf("writing %s: %w", full, err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing %s: %w", full, err)
	}
	return nil
}
