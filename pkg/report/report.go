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

// Package report holds the finished per-language analysis and renders it.
package report

import (
	"sort"

	"github.com/walteh/tokenalyzer/pkg/score"
)

// TotalLabel names the synthetic row summing every language
const TotalLabel = "Total"

// 📊 Row is one line of the report
type Row struct {
	Language      string           `json:"language" yaml:"language"`
	LinesOfCode   int64            `json:"lines_of_code" yaml:"lines_of_code"`
	Tokens        int64            `json:"tokens" yaml:"tokens"`
	TokensPerLine float64          `json:"tokens_per_line" yaml:"tokens_per_line"`
	Other         map[string]int64 `json:"other,omitempty" yaml:"other,omitempty"` // metrics beyond lines and tokens
}

// 📥 Entry is one language bucket handed over by the aggregation engine
type Entry struct {
	Language string
	Metrics  map[string]int64
}

// 📋 Report is the immutable result of an analysis.
//
// Languages keep the order they were given in; Rows sorts a copy.
type Report struct {
	root       string
	incomplete bool
	languages  []Row
	index      map[string]int
	total      Row
}

// 🏭 New assembles a report from buckets given in discovery order.
// TokensPerLine is computed here, once per row.
func New(root string, entries []Entry, incomplete bool) *Report {
	r := &Report{
		root:       root,
		incomplete: incomplete,
		languages:  make([]Row, 0, len(entries)),
		index:      make(map[string]int, len(entries)),
	}

	totals := make(map[string]int64)
	for _, e := range entries {
		if _, dup := r.index[e.Language]; dup {
			continue
		}
		r.index[e.Language] = len(r.languages)
		r.languages = append(r.languages, newRow(e.Language, e.Metrics))
		for name, v := range e.Metrics {
			totals[name] += v
		}
	}
	r.total = newRow(TotalLabel, totals)

	return r
}

func newRow(language string, metrics map[string]int64) Row {
	row := Row{
		Language:    language,
		LinesOfCode: metrics[score.Lines],
		Tokens:      metrics[score.Tokens],
	}
	row.TokensPerLine = TokensPerLine(row.Tokens, row.LinesOfCode)

	for name, v := range metrics {
		if name == score.Lines || name == score.Tokens {
			continue
		}
		if row.Other == nil {
			row.Other = make(map[string]int64)
		}
		row.Other[name] = v
	}
	return row
}

// TokensPerLine divides tokens by lines, or returns 0 when there are no lines
func TokensPerLine(tokens, lines int64) float64 {
	if lines <= 0 {
		return 0
	}
	return float64(tokens) / float64(lines)
}

// Root returns the analysed directory
func (r *Report) Root() string {
	return r.root
}

// Incomplete reports whether the analysis was cancelled before the walk finished
func (r *Report) Incomplete() bool {
	return r.incomplete
}

// Total returns the synthetic row summing all languages
func (r *Report) Total() Row {
	return copyRow(r.total)
}

// Language returns the row for one language
func (r *Report) Language(name string) (Row, bool) {
	i, ok := r.index[name]
	if !ok {
		return Row{}, false
	}
	return copyRow(r.languages[i]), true
}

// Languages returns the language labels in discovery order
func (r *Report) Languages() []string {
	out := make([]string, 0, len(r.languages))
	for _, row := range r.languages {
		out = append(out, row.Language)
	}
	return out
}

// Len returns the number of languages, not counting Total
func (r *Report) Len() int {
	return len(r.languages)
}

// 📈 Rows returns Total followed by the languages sorted by descending
// lines of code. Ties keep discovery order.
func (r *Report) Rows() []Row {
	sorted := make([]Row, 0, len(r.languages))
	for _, row := range r.languages {
		sorted = append(sorted, copyRow(row))
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LinesOfCode > sorted[j].LinesOfCode
	})

	return append([]Row{copyRow(r.total)}, sorted...)
}

func copyRow(row Row) Row {
	if row.Other != nil {
		other := make(map[string]int64, len(row.Other))
		for k, v := range row.Other {
			other[k] = v
		}
		row.Other = other
	}
	return row
}
