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
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/opts"
	"github.com/walteh/tokenalyzer/pkg/log"
)

func NewScanCmd(opts *opts.RootOpts) *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Profile a local directory",
		Long: `Scan walks a local directory (default: the working directory) and
reports lines of code, tokens and tokens per line for each language.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, opts.Config); err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			return analyzeDir(cmd.Context(), opts, root, log.Run{Root: root}, flags.quiet)
		},
	}

	flags.register(cmd)
	return cmd
}
