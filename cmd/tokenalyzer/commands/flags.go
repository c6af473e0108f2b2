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
	"github.com/spf13/cobra"
	"github.com/walteh/tokenalyzer/pkg/config"
)

// analysisFlags are shared by analyze and scan. Flags that were set
// replace the matching config values.
type analysisFlags struct {
	format      string
	workers     int
	ignore      []string
	skipVendor  bool
	maxFileSize string
	quiet       bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "output format: table, json or yaml")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "files processed in parallel (1 walks sequentially)")
	cmd.Flags().StringSliceVar(&f.ignore, "ignore", nil, "doublestar glob of paths to skip (repeatable)")
	cmd.Flags().BoolVar(&f.skipVendor, "skip-vendor", false, "skip vendored and generated directories")
	cmd.Flags().StringVar(&f.maxFileSize, "max-file-size", "", "skip files larger than this, e.g. 1MiB")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print the report")
}

func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("ignore") {
		cfg.Ignore = f.ignore
	}
	if flags.Changed("skip-vendor") {
		cfg.SkipVendor = f.skipVendor
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = f.maxFileSize
	}
	return cfg.Validate()
}
