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

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tokenalyzer/pkg/provider"
)

const (
	// Name is the registry name
	Name = "github"
	// DefaultWebURL hosts the archive downloads
	DefaultWebURL = "https://github.com"
)

func init() {
	provider.Register(Name, provider.DefaultHost, New)
}

// 🎯 Provider resolves GitHub archives
type Provider struct {
	client *github.Client
	webURL string
	token  string
}

// 🏭 New creates a new GitHub provider. The token comes from opts or
// GITHUB_TOKEN; public repositories work without one.
func New(ctx context.Context, opts provider.Options) (provider.Provider, error) {
	logger := zerolog.Ctx(ctx)

	client := github.NewClient(opts.HTTPClient)

	token := opts.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token != "" {
		client = client.WithAuthToken(token)
	} else {
		logger.Debug().Msg("no github token set, using unauthenticated api")
	}

	if opts.APIURL != "" {
		base, err := url.Parse(opts.APIURL)
		if err != nil {
			return nil, errors.Errorf("parsing api url: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		client.BaseURL = base
	}

	webURL := DefaultWebURL
	if opts.WebURL != "" {
		webURL = strings.TrimSuffix(opts.WebURL, "/")
	}

	return &Provider{client: client, webURL: webURL, token: token}, nil
}

// Name implements provider.Provider
func (p *Provider) Name() string {
	return Name
}

// 🌿 DefaultBranch asks the API for the repository's default branch
func (p *Provider) DefaultBranch(ctx context.Context, ref provider.RepoRef) (string, error) {
	repo, _, err := p.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return "", errors.Errorf("getting repository %s: %w", ref.FullName(), err)
	}
	branch := repo.GetDefaultBranch()
	if branch == "" {
		return "", errors.Errorf("repository %s has no default branch", ref.FullName())
	}
	return branch, nil
}

// 📦 ResolveArchive implements provider.Provider
func (p *Provider) ResolveArchive(ctx context.Context, ref provider.RepoRef, format provider.ArchiveFormat) (provider.Archive, error) {
	logger := zerolog.Ctx(ctx)

	name := ref.Ref
	refType := ref.RefType
	if name == "" {
		branch, err := p.DefaultBranch(ctx, ref)
		if err != nil {
			return provider.Archive{}, err
		}
		logger.Debug().Str("repo", ref.FullName()).Str("branch", branch).Msg("resolved default branch")
		name = branch
		refType = provider.RefBranch
	}

	archive := provider.Archive{
		Repo:   ref,
		Ref:    name,
		URL:    p.archiveURL(ref, name, refType, format),
		Format: format,
		Header: http.Header{},
	}
	if p.token != "" {
		archive.Header.Set("Authorization", "Bearer "+p.token)
	}
	return archive, nil
}

func (p *Provider) archiveURL(ref provider.RepoRef, name string, refType provider.RefType, format provider.ArchiveFormat) string {
	var path string
	switch refType {
	case provider.RefTag:
		path = "refs/tags/" + name
	case provider.RefCommit:
		path = name
	default:
		path = "refs/heads/" + name
	}
	return fmt.Sprintf("%s/%s/%s/archive/%s.%s", p.webURL, ref.Owner, ref.Name, path, format.Ext())
}
