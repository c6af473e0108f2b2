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

// Package fetch downloads a repository archive to local disk.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrHTTPStatus is returned for any response other than 200 OK
	ErrHTTPStatus = errors.Base("unexpected http status")
	// ErrNotArchive is returned when the body is neither zip nor gzip
	ErrNotArchive = errors.Base("response is not an archive")
	// ErrNotFound is returned for a 404 response or a tiny "404: Not Found" body
	ErrNotFound = errors.Base("archive not found")
)

// 📦 Kind is the archive format detected from the first bytes
type Kind string

const (
	KindZip     Kind = "zip"
	KindGzip    Kind = "gzip"
	KindUnknown Kind = "unknown"
)

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect reports the archive format of a body prefix
func Detect(prefix []byte) Kind {
	switch {
	case bytes.HasPrefix(prefix, zipMagic):
		return KindZip
	case bytes.HasPrefix(prefix, gzipMagic):
		return KindGzip
	default:
		return KindUnknown
	}
}

// 📊 ByteObserver is told how many bytes have been written so far.
// total is -1 when the server sent no Content-Length.
type ByteObserver interface {
	BytesWritten(written, total int64)
}

// ByteObserverFunc adapts a function to ByteObserver
type ByteObserverFunc func(written, total int64)

// BytesWritten implements ByteObserver
func (f ByteObserverFunc) BytesWritten(written, total int64) {
	f(written, total)
}

// 📥 Result describes a finished download
type Result struct {
	Path  string
	Size  int64
	Kind  Kind
	URL   string
	Total int64 // Content-Length, or -1
}

type options struct {
	client    *http.Client
	observer  ByteObserver
	headers   http.Header
	userAgent string
}

// ⚙️ Option configures Download
type Option func(*options)

// WithClient sets the http client, http.DefaultClient otherwise
func WithClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithObserver sets a progress observer
func WithObserver(obs ByteObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithHeader adds a request header
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers.Add(key, value)
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// 📥 Download streams url into the file dest.
//
// Anything but 200 OK is an error, as is a body that is not a zip or gzip
// archive. There is no retry.
func Download(ctx context.Context, url, dest string, opts ...Option) (Result, error) {
	logger := zerolog.Ctx(ctx)

	o := options{client: http.DefaultClient, headers: http.Header{}, userAgent: "tokenalyzer"}
	for _, opt := range opts {
		opt(&o)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, errors.Errorf("creating request: %w", err)
	}
	for k, vs := range o.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", o.userAgent)

	logger.Debug().Str("url", url).Msg("downloading archive")

	resp, err := o.client.Do(req)
	if err != nil {
		return Result{}, errors.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Result{}, errors.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.Errorf("%w: %d from %s", ErrHTTPStatus, resp.StatusCode, url)
	}

	f, err := os.Create(dest)
	if err != nil {
		return Result{}, errors.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}

	pw := &progressWriter{w: f, total: total, observer: o.observer}
	written, err := io.Copy(pw, resp.Body)
	if err != nil {
		return Result{}, errors.Errorf("writing %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return Result{}, errors.Errorf("closing %s: %w", dest, err)
	}

	kind := Detect(pw.head)
	if kind == KindUnknown {
		if written < 1024 && strings.Contains(string(pw.head), "404: Not Found") {
			return Result{}, errors.Errorf("%w: %s", ErrNotFound, url)
		}
		return Result{}, errors.Errorf("%w: got %q", ErrNotArchive, string(pw.head[:min(len(pw.head), 64)]))
	}

	logger.Debug().
		Str("path", dest).
		Str("size", humanize.Bytes(uint64(written))).
		Str("kind", string(kind)).
		Msg("archive downloaded")

	return Result{Path: dest, Size: written, Kind: kind, URL: url, Total: total}, nil
}

const headSize = 1024

// progressWriter keeps the first bytes for format detection and reports progress
type progressWriter struct {
	w        io.Writer
	written  int64
	total    int64
	head     []byte
	observer ByteObserver
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if len(p.head) < headSize {
		p.head = append(p.head, b[:min(len(b), headSize-len(p.head))]...)
	}
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.observer != nil {
		p.observer.BytesWritten(p.written, p.total)
	}
	return n, err
}
