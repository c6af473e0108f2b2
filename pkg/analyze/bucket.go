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

package analyze

import (
	"sort"

	"github.com/walteh/tokenalyzer/pkg/report"
)

// 🪣 Bucket accumulates the metrics of one language
type Bucket struct {
	Language string
	Metrics  map[string]int64

	first int // discovery sequence of the first contributing file
}

// First returns the discovery sequence number of the bucket's first file
func (b Bucket) First() int {
	return b.first
}

// 🪣 Buckets maps a language to its bucket.
//
// The zero value is not usable; use NewBuckets. Buckets is not safe for
// concurrent use; parallel runs give each worker its own and Merge them.
type Buckets struct {
	metrics []string
	byLang  map[string]*Bucket
}

// 🏭 NewBuckets creates an empty set that seeds every new bucket with the
// given metric names at zero
func NewBuckets(metrics []string) *Buckets {
	return &Buckets{
		metrics: append([]string(nil), metrics...),
		byLang:  make(map[string]*Bucket),
	}
}

func (b *Buckets) bucket(language string, seq int) *Bucket {
	bk, ok := b.byLang[language]
	if !ok {
		bk = &Bucket{Language: language, Metrics: make(map[string]int64, len(b.metrics)), first: seq}
		for _, m := range b.metrics {
			bk.Metrics[m] = 0
		}
		b.byLang[language] = bk
		return bk
	}
	if seq < bk.first {
		bk.first = seq
	}
	return bk
}

// ➕ Add folds one file's scores into its language bucket
func (b *Buckets) Add(seq int, language string, scores map[string]int64) {
	bk := b.bucket(language, seq)
	for name, v := range scores {
		bk.Metrics[name] += v
	}
}

// 🔀 Merge adds every bucket of other into b. Merging is associative and
// commutative, so the order partial results arrive in does not matter.
func (b *Buckets) Merge(other *Buckets) {
	if other == nil {
		return
	}
	for lang, ob := range other.byLang {
		b.Add(ob.first, lang, ob.Metrics)
	}
}

// Len returns the number of languages seen
func (b *Buckets) Len() int {
	return len(b.byLang)
}

// Get returns a copy of the bucket for language
func (b *Buckets) Get(language string) (Bucket, bool) {
	bk, ok := b.byLang[language]
	if !ok {
		return Bucket{}, false
	}
	return copyBucket(bk), true
}

// 📋 Sorted returns copies of the buckets in discovery order
func (b *Buckets) Sorted() []Bucket {
	out := make([]Bucket, 0, len(b.byLang))
	for _, bk := range b.byLang {
		out = append(out, copyBucket(bk))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].first != out[j].first {
			return out[i].first < out[j].first
		}
		return out[i].Language < out[j].Language
	})
	return out
}

// Entries converts the buckets into report input, in discovery order
func (b *Buckets) Entries() []report.Entry {
	sorted := b.Sorted()
	out := make([]report.Entry, 0, len(sorted))
	for _, bk := range sorted {
		out = append(out, report.Entry{Language: bk.Language, Metrics: bk.Metrics})
	}
	return out
}

func copyBucket(bk *Bucket) Bucket {
	metrics := make(map[string]int64, len(bk.Metrics))
	for k, v := range bk.Metrics {
		metrics[k] = v
	}
	return Bucket{Language: bk.Language, Metrics: metrics, first: bk.first}
}
