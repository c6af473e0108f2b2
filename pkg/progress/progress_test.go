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

package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/tokenalyzer/pkg/analyze"
)

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		total   int64
		want    string
	}{
		{name: "zero_progress", current: 0, total: 10, want: "⏳ Progress: 0/10 (0%)"},
		{name: "half_progress", current: 5, total: 10, want: "⏳ Progress: 5/10 (50%)"},
		{name: "complete", current: 10, total: 10, want: "✅ Progress: 10/10 (100%)"},
		{name: "zero_total", current: 0, total: 0, want: "✅ Progress: 0/0 (0%)"},
		{name: "current_exceeds_total", current: 15, total: 10, want: "✅ Progress: 15/10 (150%)"},
		{name: "nonzero_with_zero_total", current: 3, total: 0, want: "✅ Progress: 3/0 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Formatter{}.FormatProgress(tt.current, tt.total), "progress message should match")
		})
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "📥 Downloaded 1.5 kB", Formatter{}.FormatBytes(1500, -1))
	assert.Equal(t, "📥 Downloaded 1.0 MB of 2.0 MB", Formatter{}.FormatBytes(1_000_000, 2_000_000))
}

func TestFormatVisit(t *testing.T) {
	tests := []struct {
		name  string
		visit analyze.FileVisit
		want  string
	}{
		{name: "counted", visit: analyze.FileVisit{Path: "a.py", Language: "Python", Status: analyze.Counted}, want: "✨ a.py (Python)"},
		{name: "undecodable", visit: analyze.FileVisit{Path: "img.png", Status: analyze.SkippedUndecodable}, want: "🚫 img.png: not utf-8"},
		{name: "unclassified", visit: analyze.FileVisit{Path: "x.zzz", Status: analyze.SkippedUnclassified}, want: "❔ x.zzz: unknown language"},
		{name: "unreadable", visit: analyze.FileVisit{Path: "locked", Status: analyze.SkippedUnreadable}, want: "❌ locked: unreadable"},
		{name: "too_large", visit: analyze.FileVisit{Path: "dump.sql", Size: 2_000_000, Status: analyze.SkippedTooLarge}, want: "🐘 dump.sql: too large (2.0 MB)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Formatter{}.FormatVisit(tt.visit))
		})
	}
}

func TestFilesObserver(t *testing.T) {
	f := NewFiles(nil)

	visits := []analyze.FileVisit{
		{Path: "a.py", Language: "Python", Status: analyze.Counted},
		{Path: "b.py", Language: "Python", Status: analyze.Counted},
		{Path: "c.go", Language: "Go", Status: analyze.Counted},
		{Path: "d.bin", Status: analyze.SkippedUndecodable},
		{Path: "e", Status: analyze.SkippedUnclassified},
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, v := range visits {
				f.FileVisited(v)
			}
		}()
	}
	wg.Wait()
	f.Stop()

	assert.Equal(t, 30, f.Counted())
	assert.Equal(t, 20, f.Skipped())
	assert.Equal(t, 10, f.Count(analyze.SkippedUndecodable))
	assert.Equal(t, 20, f.Files("Python"))
	assert.Equal(t, 0, f.Files("Rust"))
	assert.Equal(t, "🔍 30 files counted, 20 skipped", f.Summary())
}

func TestBytesObserver(t *testing.T) {
	t.Run("counting_only", func(t *testing.T) {
		b := NewBytes(nil, "download")
		assert.Equal(t, int64(-1), b.Total(), "total should start unknown")

		b.BytesWritten(100, 1000)
		b.BytesWritten(1000, 1000)
		b.Stop()

		assert.Equal(t, int64(1000), b.Written())
		assert.Equal(t, int64(1000), b.Total())
	})
}
