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

package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/opts"
	"github.com/walteh/tokenalyzer/pkg/extract"
	"github.com/walteh/tokenalyzer/pkg/fetch"
	"github.com/walteh/tokenalyzer/pkg/log"
	"github.com/walteh/tokenalyzer/pkg/progress"
	"github.com/walteh/tokenalyzer/pkg/provider"
	_ "github.com/walteh/tokenalyzer/pkg/provider/github"
	"github.com/walteh/tokenalyzer/pkg/report"
	"github.com/walteh/tokenalyzer/pkg/workspace"
	"gitlab.com/tozd/go/errors"
)

type remoteFlags struct {
	ref           string
	refType       string
	archiveFormat string
	keep          bool
}

func NewAnalyzeCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		flags  analysisFlags
		remote remoteFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze <repo>",
		Short: "Profile a remote repository",
		Long: `Analyze downloads a repository archive and profiles it.
It will:
1. Resolve the repository reference (owner/repo, github.com/owner/repo, a URL, or owner/repo@ref)
2. Download the archive into a temporary workspace
3. Extract it and walk every file
4. Report lines, tokens and tokens per line for each language`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.Config

			set := cmd.Flags()
			if set.Changed("keep") {
				cfg.KeepWorkspace = remote.keep
			}
			if set.Changed("archive-format") {
				cfg.ArchiveFormat = remote.archiveFormat
			}
			if set.Changed("ref-type") {
				cfg.RefType = remote.refType
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			ref, err := provider.ParseRef(args[0])
			if err != nil {
				return err
			}
			if remote.ref != "" {
				ref.Ref = remote.ref
			}
			if ref.Ref != "" {
				ref.RefType = provider.RefType(cfg.RefType)
			}

			return analyzeRemote(ctx, opts, ref, flags.quiet)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&remote.ref, "ref", "", "branch, tag or commit (default: the repository's default branch)")
	cmd.Flags().StringVar(&remote.refType, "ref-type", "branch", "how to read --ref: branch, tag or commit")
	cmd.Flags().StringVar(&remote.archiveFormat, "archive-format", "zip", "archive to download: zip or tarball")
	cmd.Flags().BoolVar(&remote.keep, "keep", false, "keep the downloaded workspace")

	return cmd
}

// 📦 analyzeRemote downloads and extracts ref into a workspace, then profiles it
func analyzeRemote(ctx context.Context, o *opts.RootOpts, ref provider.RepoRef, quiet bool) (err error) {
	logger := zerolog.Ctx(ctx)
	cfg := o.Config

	p, err := provider.ForRef(ctx, ref, cfg.ProviderOptions())
	if err != nil {
		return err
	}

	format, err := provider.ParseArchiveFormat(cfg.ArchiveFormat)
	if err != nil {
		return err
	}

	archive, err := p.ResolveArchive(ctx, ref, format)
	if err != nil {
		return errors.Errorf("resolving archive for %s: %w", ref, err)
	}
	logger.Debug().Str("url", archive.URL).Str("ref", archive.Ref).Msg("resolved archive")

	ws, err := workspace.New("tokenalyzer", cfg.KeepWorkspace)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
		if ws.Kept() && !quiet {
			o.Logger.Infof("workspace kept at %s", ws.Dir())
		}
	}()

	fetchOpts := []fetch.Option{}
	for key, values := range archive.Header {
		for _, v := range values {
			fetchOpts = append(fetchOpts, fetch.WithHeader(key, v))
		}
	}

	showProgress := !quiet && cfg.Format == string(report.FormatTable)
	var bar *progress.Bytes
	if showProgress {
		bar = progress.NewBytes(o.Stderr, "downloading "+ref.FullName())
		fetchOpts = append(fetchOpts, fetch.WithObserver(bar))
	}

	res, err := fetch.Download(ctx, archive.URL, ws.Path("archive."+format.Ext()), fetchOpts...)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	root, err := extract.Archive(ctx, res.Path, ws.Path("src"))
	if err != nil {
		return err
	}

	return analyzeDir(ctx, o, root, log.Run{
		Repo:    ref.FullName(),
		Ref:     archive.Ref,
		Root:    root,
		Archive: archive.URL,
	}, quiet)
}
