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

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/commands"
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/opts"
	"github.com/walteh/tokenalyzer/pkg/config"
	"github.com/walteh/tokenalyzer/pkg/log"
	"gitlab.com/tozd/go/errors"
)

type rootFlags struct {
	configFile string
	debug      bool
}

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "tokenalyzer",
		Short: "Profile a repository's languages by lines and tokens",
		Long: `tokenalyzer downloads a repository archive (or walks a local directory),
classifies every file by language and reports lines of code, tokens and
tokens per line for each language.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, o, flags)
		},
	}

	addRootFlags(cmd, &flags)

	cmd.AddCommand(
		commands.NewAnalyzeCmd(o),
		commands.NewScanCmd(o),
		commands.NewLanguagesCmd(o),
		newVersionCmd(o),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .tokenalyzer.yaml in the working directory)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// setup wires logging into the command context and loads configuration
func setup(cmd *cobra.Command, o *opts.RootOpts, flags rootFlags) error {
	if o.Logger == nil {
		o.Logger = newLogger(o.Stderr, flags.debug)
	}
	ctx := log.NewContext(cmd.Context(), o.Logger)
	cmd.SetContext(ctx)

	wd, err := os.Getwd()
	if err != nil {
		return errors.Errorf("getting working directory: %w", err)
	}

	if err := config.LoadDotEnv(ctx, wd); err != nil {
		return err
	}

	cfg, err := config.Resolve(ctx, flags.configFile, wd)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Str("run_id", o.Logger.RunID()).Msg("configuration loaded")
	return nil
}

// newLogger disables structured output unless debug is set
func newLogger(console io.Writer, debug bool) *log.Logger {
	if debug {
		return log.New(console, zerolog.DebugLevel)
	}
	return log.New(console, zerolog.Disabled)
}
