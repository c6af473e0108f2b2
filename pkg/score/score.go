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

package score

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📏 Metric names registered by default
const (
	Lines  = "lines"
	Tokens = "tokens"
)

// 🎯 Scorer turns decoded file content into a non-negative metric value.
// Implementations must be pure and safe to call from several goroutines.
type Scorer interface {
	Score(content string) int64
}

// 🔧 Func adapts a plain function to the Scorer interface
type Func func(content string) int64

// Score implements Scorer
func (f Func) Score(content string) int64 {
	return f(content)
}

// 📏 LineScorer counts line terminators.
//
// A file without a trailing newline reports one line less than an editor
// would show; "lines of code" is the number of line breaks.
type LineScorer struct{}

// Score implements Scorer
func (LineScorer) Score(content string) int64 {
	return int64(strings.Count(content, "\n"))
}

// 📦 Set is a named collection of scorers.
type Set struct {
	names   []string
	scorers map[string]Scorer
}

// 🏭 NewSet creates an empty scorer set
func NewSet() *Set {
	return &Set{scorers: make(map[string]Scorer)}
}

// 📝 Register adds a scorer under the given metric name
func (s *Set) Register(name string, scorer Scorer) error {
	if name == "" {
		return errors.New("metric name is required")
	}
	if scorer == nil {
		return errors.Errorf("scorer for metric %q is nil", name)
	}
	if _, ok := s.scorers[name]; ok {
		return errors.Errorf("metric %q already registered", name)
	}
	s.scorers[name] = scorer
	s.names = append(s.names, name)
	sort.Strings(s.names)
	return nil
}

// MustRegister is Register that panics, for static setup and tests
func (s *Set) MustRegister(name string, scorer Scorer) *Set {
	if err := s.Register(name, scorer); err != nil {
		panic(err)
	}
	return s
}

// Names returns the registered metric names in sorted order
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Get returns the scorer registered for name
func (s *Set) Get(name string) (Scorer, bool) {
	scorer, ok := s.scorers[name]
	return scorer, ok
}

// Len returns the number of registered scorers
func (s *Set) Len() int {
	return len(s.names)
}

// 🧮 ScoreAll runs every scorer over content and returns the results by name
func (s *Set) ScoreAll(content string) map[string]int64 {
	out := make(map[string]int64, len(s.names))
	for _, name := range s.names {
		out[name] = s.scorers[name].Score(content)
	}
	return out
}
