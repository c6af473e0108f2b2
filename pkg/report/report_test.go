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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/tokenalyzer/pkg/score"
)

func sampleEntries() []Entry {
	return []Entry{
		{Language: "Go", Metrics: map[string]int64{score.Lines: 1, score.Tokens: 3}},
		{Language: "Python", Metrics: map[string]int64{score.Lines: 2, score.Tokens: 2}},
		{Language: "Ruby", Metrics: map[string]int64{score.Lines: 1, score.Tokens: 10}},
	}
}

func TestNew(t *testing.T) {
	r := New("/tmp/repo", sampleEntries(), false)

	assert.Equal(t, "/tmp/repo", r.Root())
	assert.False(t, r.Incomplete())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"Go", "Python", "Ruby"}, r.Languages(), "discovery order should be kept")

	total := r.Total()
	assert.Equal(t, TotalLabel, total.Language)
	assert.Equal(t, int64(4), total.LinesOfCode)
	assert.Equal(t, int64(15), total.Tokens)
	assert.InDelta(t, 3.75, total.TokensPerLine, 1e-9)

	py, ok := r.Language("Python")
	require.True(t, ok)
	assert.Equal(t, int64(2), py.LinesOfCode)
	assert.InDelta(t, 1.0, py.TokensPerLine, 1e-9)

	_, ok = r.Language("COBOL")
	assert.False(t, ok)
}

func TestRowsSorting(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []string
	}{
		{
			name:    "descending_lines_with_stable_ties",
			entries: sampleEntries(),
			want:    []string{TotalLabel, "Python", "Go", "Ruby"},
		},
		{
			name: "total_first_even_when_small",
			entries: []Entry{
				{Language: "Empty", Metrics: map[string]int64{score.Lines: 0}},
			},
			want: []string{TotalLabel, "Empty"},
		},
		{
			name:    "no_languages",
			entries: nil,
			want:    []string{TotalLabel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("", tt.entries, false)
			var got []string
			for _, row := range r.Rows() {
				got = append(got, row.Language)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZeroDivision(t *testing.T) {
	r := New("", []Entry{
		{Language: "Text", Metrics: map[string]int64{score.Lines: 0, score.Tokens: 12}},
	}, false)

	row, ok := r.Language("Text")
	require.True(t, ok)
	assert.Equal(t, 0.0, row.TokensPerLine)
	assert.Equal(t, 0.0, r.Total().TokensPerLine)
	assert.Equal(t, 0.0, TokensPerLine(5, -1))
}

func TestEmptyReport(t *testing.T) {
	r := New("/empty", nil, false)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, Row{Language: TotalLabel}, r.Total())
}

func TestOtherMetrics(t *testing.T) {
	r := New("", []Entry{
		{Language: "Go", Metrics: map[string]int64{score.Lines: 1, "bytes": 13}},
		{Language: "C", Metrics: map[string]int64{score.Lines: 1, "bytes": 7}},
	}, false)

	row, ok := r.Language("Go")
	require.True(t, ok)
	assert.Equal(t, map[string]int64{"bytes": 13}, row.Other)
	assert.Equal(t, map[string]int64{"bytes": 20}, r.Total().Other)

	row.Other["bytes"] = 99
	again, _ := r.Language("Go")
	assert.Equal(t, int64(13), again.Other["bytes"], "rows should be copies")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: " JSON ", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: "", want: FormatTable},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	r := New("/tmp/repo", sampleEntries(), false)

	t.Run("table", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Render(buf, r, FormatTable))
		out := buf.String()
		assert.Contains(t, out, "Language")
		assert.Contains(t, out, "Python")
		assert.Contains(t, out, "3.75")
		assert.NotContains(t, out, "incomplete")
		assert.Less(t, bytes.Index(buf.Bytes(), []byte(TotalLabel)), bytes.Index(buf.Bytes(), []byte("Python")))
	})

	t.Run("table_incomplete", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, RenderTable(buf, New("", nil, true)))
		assert.Contains(t, buf.String(), "incomplete")
	})

	t.Run("table_thousands", func(t *testing.T) {
		buf := &bytes.Buffer{}
		big := New("", []Entry{{Language: "C", Metrics: map[string]int64{score.Lines: 1234567}}}, false)
		require.NoError(t, RenderTable(buf, big))
		assert.Contains(t, buf.String(), "1,234,567")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Render(buf, r, FormatJSON))

		var doc document
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, "/tmp/repo", doc.Root)
		require.Len(t, doc.Rows, 4)
		assert.Equal(t, TotalLabel, doc.Rows[0].Language)
		assert.Equal(t, "Python", doc.Rows[1].Language)
	})

	t.Run("yaml", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Render(buf, r, FormatYAML))

		var doc document
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc.Rows, 4)
		assert.Equal(t, int64(15), doc.Rows[0].Tokens)
	})

	t.Run("unknown", func(t *testing.T) {
		err := Render(&bytes.Buffer{}, r, Format("xml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownFormat))
	})
}
