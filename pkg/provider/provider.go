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

package provider

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ErrUnknownProvider is returned by Get for a name nobody registered
var ErrUnknownProvider = errors.Base("unknown provider")

// 📦 ArchiveFormat selects zip or tar.gz downloads
type ArchiveFormat string

const (
	FormatZip     ArchiveFormat = "zip"
	FormatTarball ArchiveFormat = "tarball"
)

// Ext returns the file extension the host uses for the format
func (f ArchiveFormat) Ext() string {
	if f == FormatTarball {
		return "tar.gz"
	}
	return "zip"
}

// ParseArchiveFormat accepts zip, tarball and tar.gz; empty means zip
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch s {
	case "", "zip":
		return FormatZip, nil
	case "tarball", "tar.gz", "tgz":
		return FormatTarball, nil
	}
	return "", errors.Errorf("unknown archive format %q", s)
}

// 📦 Archive is a resolved, downloadable snapshot of a repository
type Archive struct {
	Repo   RepoRef
	Ref    string // the ref actually used, after default-branch lookup
	URL    string
	Format ArchiveFormat
	Header http.Header // extra request headers, e.g. authorization
}

// 🔌 Provider resolves repository references to archive URLs
type Provider interface {
	// Name returns the registry name
	Name() string

	// 📦 ResolveArchive returns the archive for ref; an empty ref means the
	// repository's default branch
	ResolveArchive(ctx context.Context, ref RepoRef, format ArchiveFormat) (Archive, error)
}

// ⚙️ Options configures a provider instance
type Options struct {
	Token      string       // API token, optional for public repositories
	APIURL     string       // API base URL override
	WebURL     string       // archive host override
	HTTPClient *http.Client // nil means http.DefaultClient
}

// 🏭 Factory creates a new provider
type Factory func(ctx context.Context, opts Options) (Provider, error)

var (
	mu sync.RWMutex
	// 🗺️ providers is a map of provider names to factories
	providers = make(map[string]Factory)
	// hosts maps a repository host to a provider name
	hosts = make(map[string]string)
)

// 📝 Register registers a provider factory for the given repository host
func Register(name, host string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
	if host != "" {
		hosts[host] = name
	}
}

// 🎯 Get creates the provider registered under name
func Get(ctx context.Context, name string, opts Options) (Provider, error) {
	mu.RLock()
	factory, ok := providers[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return factory(ctx, opts)
}

// 🔍 ForRef creates the provider serving the reference's host
func ForRef(ctx context.Context, ref RepoRef, opts Options) (Provider, error) {
	mu.RLock()
	name, ok := hosts[ref.Host]
	mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("%w: no provider for host %s", ErrUnknownProvider, ref.Host)
	}
	return Get(ctx, name, opts)
}

// Names lists registered providers
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(providers))
	for name := range providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
