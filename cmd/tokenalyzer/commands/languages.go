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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/opts"
	"github.com/walteh/tokenalyzer/pkg/classify"
	"gitlab.com/tozd/go/errors"
)

const maxListedExtensions = 6

func NewLanguagesCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages files can be classified as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var langs []classify.Language
			for _, l := range classify.Languages() {
				if kind == "" || strings.EqualFold(kind, l.Type) {
					langs = append(langs, l)
				}
			}

			if asJSON {
				enc := json.NewEncoder(opts.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(langs); err != nil {
					return errors.Errorf("encoding languages: %w", err)
				}
				return nil
			}

			data := pterm.TableData{{"Language", "Type", "Extensions"}}
			for _, l := range langs {
				data = append(data, []string{l.Name, l.Type, extensions(l.Extensions)})
			}
			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering languages: %w", err)
			}
			_, err = fmt.Fprintln(opts.Stdout, out)
			return err
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "", "only list one type: programming, markup, data or prose")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func extensions(exts []string) string {
	if len(exts) <= maxListedExtensions {
		return strings.Join(exts, " ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(exts[:maxListedExtensions], " "), len(exts)-maxListedExtensions)
}
