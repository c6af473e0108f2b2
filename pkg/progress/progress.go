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

// Package progress renders download and analysis progress on the terminal.
//
// Observers built with a nil writer only count; nothing is drawn.
package progress

import (
	"io"
	"sync"

	"github.com/pterm/pterm"

	"github.com/walteh/tokenalyzer/pkg/analyze"
)

// 📥 Bytes shows download progress: a bar when the size is known, a
// spinner otherwise. It implements fetch.ByteObserver.
type Bytes struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	bar     *pterm.ProgressbarPrinter
	spinner *pterm.SpinnerPrinter
	started bool
	written int64
	total   int64
	format  Formatter
}

// 🏭 NewBytes creates a download observer drawing to w
func NewBytes(w io.Writer, title string) *Bytes {
	return &Bytes{w: w, title: title, total: -1}
}

// BytesWritten implements fetch.ByteObserver
func (b *Bytes) BytesWritten(written, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		b.start(total)
	}

	delta := written - b.written
	b.written = written
	b.total = total

	switch {
	case b.bar != nil:
		b.bar.Add(int(delta))
	case b.spinner != nil:
		b.spinner.UpdateText(b.format.FormatBytes(written, total))
	}
}

func (b *Bytes) start(total int64) {
	b.started = true
	if b.w == nil {
		return
	}
	if total > 0 {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(int(total)).
			WithTitle(b.title).
			WithWriter(b.w).
			WithRemoveWhenDone(true).
			Start()
		if err == nil {
			b.bar = bar
		}
		return
	}
	spinner, err := pterm.DefaultSpinner.WithWriter(b.w).Start(b.title)
	if err == nil {
		b.spinner = spinner
	}
}

// Written returns the last reported byte count
func (b *Bytes) Written() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

// Total returns the last reported total, -1 when unknown
func (b *Bytes) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Stop clears the bar or finishes the spinner
func (b *Bytes) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_, _ = b.bar.Stop()
		b.bar = nil
	}
	if b.spinner != nil {
		b.spinner.Success(b.format.FormatBytes(b.written, b.total))
		b.spinner = nil
	}
}

// 🔍 Files counts visited files and shows a spinner. It implements
// analyze.Observer and is safe for concurrent use.
type Files struct {
	mu        sync.Mutex
	w         io.Writer
	spinner   *pterm.SpinnerPrinter
	started   bool
	byStatus  map[analyze.VisitStatus]int
	languages map[string]int
	format    Formatter
}

// 🏭 NewFiles creates a file observer drawing to w
func NewFiles(w io.Writer) *Files {
	return &Files{
		w:         w,
		byStatus:  make(map[analyze.VisitStatus]int),
		languages: make(map[string]int),
	}
}

// FileVisited implements analyze.Observer
func (f *Files) FileVisited(v analyze.FileVisit) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byStatus[v.Status]++
	if v.Status == analyze.Counted {
		f.languages[v.Language]++
	}

	if !f.started {
		f.started = true
		if f.w != nil {
			if spinner, err := pterm.DefaultSpinner.WithWriter(f.w).Start("analysing"); err == nil {
				f.spinner = spinner
			}
		}
	}
	if f.spinner != nil {
		f.spinner.UpdateText(f.format.FormatVisit(v))
	}
}

// Count returns how many files ended with status
func (f *Files) Count(status analyze.VisitStatus) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byStatus[status]
}

// Counted returns the number of files that contributed to a language
func (f *Files) Counted() int {
	return f.Count(analyze.Counted)
}

// Skipped returns the number of files that contributed nothing
func (f *Files) Skipped() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for status, c := range f.byStatus {
		if status.Skipped() {
			n += c
		}
	}
	return n
}

// Files returns the number of counted files of one language
func (f *Files) Files(language string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.languages[language]
}

// Summary formats the counted/skipped totals
func (f *Files) Summary() string {
	return f.format.FormatFiles(f.Counted(), f.Skipped())
}

// Stop finishes the spinner with the summary
func (f *Files) Stop() {
	summary := f.Summary()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.spinner != nil {
		f.spinner.Success(summary)
		f.spinner = nil
	}
}
