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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an output format that has no renderer
var ErrUnknownFormat = errors.Base("unknown output format")

// 🖨️ Format selects a renderer
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats
func Formats() []Format {
	return []Format{FormatTable, FormatJSON, FormatYAML}
}

// ParseFormat normalises a user-supplied format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatTable, nil
	}
	return "", errors.Errorf("%w: %q", ErrUnknownFormat, s)
}

// document is the serialised shape shared by JSON and YAML
type document struct {
	Root       string `json:"root" yaml:"root"`
	Incomplete bool   `json:"incomplete" yaml:"incomplete"`
	Rows       []Row  `json:"rows" yaml:"rows"`
}

func (r *Report) document() document {
	return document{Root: r.root, Incomplete: r.incomplete, Rows: r.Rows()}
}

// 🖨️ Render writes the report in the given format
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatTable:
		return RenderTable(w, r)
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatYAML:
		return RenderYAML(w, r)
	}
	return errors.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// 📋 RenderTable writes a pterm table with Total as the first data row
func RenderTable(w io.Writer, r *Report) error {
	data := pterm.TableData{{"Language", "Lines of code", "Tokens", "Tokens/line"}}
	for _, row := range r.Rows() {
		data = append(data, []string{
			row.Language,
			humanize.Comma(row.LinesOfCode),
			humanize.Comma(row.Tokens),
			fmt.Sprintf("%.2f", row.TokensPerLine),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithRightAlignment().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering table: %w", err)
	}

	if _, err := fmt.Fprintln(w, out); err != nil {
		return errors.Errorf("writing table: %w", err)
	}
	if r.incomplete {
		if _, err := fmt.Fprintln(w, "(incomplete: analysis was cancelled)"); err != nil {
			return errors.Errorf("writing table: %w", err)
		}
	}
	return nil
}

// 📋 RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(r.document()); err != nil {
		return errors.Errorf("encoding json: %w", err)
	}
	return nil
}

// 📋 RenderYAML writes the report as YAML
func RenderYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.document()); err != nil {
		return errors.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Errorf("closing yaml encoder: %w", err)
	}
	return nil
}
