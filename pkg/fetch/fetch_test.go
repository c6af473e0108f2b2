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

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Kind
	}{
		{name: "zip", prefix: []byte("PK\x03\x04rest"), want: KindZip},
		{name: "gzip", prefix: []byte{0x1f, 0x8b, 0x08}, want: KindGzip},
		{name: "html", prefix: []byte("<html>"), want: KindUnknown},
		{name: "empty", prefix: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.prefix))
		})
	}
}

func TestDownload(t *testing.T) {
	zipBody := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{'z'}, 5000)...)
	gzipBody := append([]byte{0x1f, 0x8b}, bytes.Repeat([]byte{'g'}, 100)...)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantKind   Kind
		wantSize   int64
		wantTotal  int64
		wantErr    error
		wantBody   []byte
		wantCalled bool
	}{
		{
			name: "zip_with_length",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", strconv.Itoa(len(zipBody)))
				_, _ = w.Write(zipBody)
			},
			wantKind:   KindZip,
			wantSize:   int64(len(zipBody)),
			wantTotal:  int64(len(zipBody)),
			wantBody:   zipBody,
			wantCalled: true,
		},
		{
			name: "gzip_chunked",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(gzipBody[:10])
				w.(http.Flusher).Flush()
				_, _ = w.Write(gzipBody[10:])
			},
			wantKind:   KindGzip,
			wantSize:   int64(len(gzipBody)),
			wantTotal:  -1,
			wantBody:   gzipBody,
			wantCalled: true,
		},
		{
			name: "http_404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "http_500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: ErrHTTPStatus,
		},
		{
			name: "not_found_body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("404: Not Found"))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "not_an_archive",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>hello</html>"))
			},
			wantErr: ErrNotArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			dest := filepath.Join(t.TempDir(), "archive")
			var lastWritten, lastTotal int64
			called := false
			obs := ByteObserverFunc(func(written, total int64) {
				called = true
				lastWritten, lastTotal = written, total
			})

			res, err := Download(context.Background(), srv.URL+"/archive.zip", dest, WithObserver(obs), WithClient(srv.Client()))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "error should wrap %v, got %v", tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, res.Kind, "kind should match")
			assert.Equal(t, tt.wantSize, res.Size, "size should match")
			assert.Equal(t, tt.wantTotal, res.Total, "total should match")
			assert.Equal(t, dest, res.Path)
			assert.Equal(t, tt.wantCalled, called, "observer should be called")
			assert.Equal(t, tt.wantSize, lastWritten, "last progress should equal size")
			assert.Equal(t, tt.wantTotal, lastTotal)

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got, "file contents should match")
		})
	}
}

func TestDownloadHeaders(t *testing.T) {
	var gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "a.zip"),
		WithUserAgent("tokenalyzer-test"),
		WithHeader("Authorization", "Bearer abc"),
	)
	require.NoError(t, err)
	assert.Equal(t, "tokenalyzer-test", gotUA)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestDownloadCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Download(ctx, srv.URL, filepath.Join(t.TempDir(), "a.zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
