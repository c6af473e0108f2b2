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

// Package classify assigns a language label to a file from its name and content.
//
// A Chain tries its strategies in order and returns the first label found.
// A file no strategy recognises has no label and is left out of aggregation.
package classify

import (
	"path/filepath"
	"sort"

	"github.com/go-enry/go-enry/v2"
	"github.com/go-enry/go-enry/v2/data"
)

// 🎯 Classifier maps (path, content) to a language label
type Classifier interface {
	Classify(path string, content []byte) (string, bool)
}

// 🔍 Strategy is a single detection step in a Chain
type Strategy interface {
	Name() string
	Detect(path string, content []byte) (string, bool)
}

// 🔗 Chain is an ordered list of strategies
type Chain struct {
	strategies []Strategy
}

// 🏭 NewChain creates a chain trying strategies in the given order
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// 🏭 Default returns the name-first, content-second chain
func Default() *Chain {
	return NewChain(ByFilename{}, ByExtension{}, ByShebang{}, ByModeline{})
}

// Classify implements Classifier
func (c *Chain) Classify(path string, content []byte) (string, bool) {
	lang, _, ok := c.Explain(path, content)
	return lang, ok
}

// Explain is Classify that also reports which strategy produced the label
func (c *Chain) Explain(path string, content []byte) (lang string, strategy string, ok bool) {
	for _, s := range c.strategies {
		if lang, ok := s.Detect(path, content); ok {
			return lang, s.Name(), true
		}
	}
	return "", "", false
}

// Strategies returns the names of the chain's strategies in order
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// 📛 ByFilename matches well-known file names (Makefile, Dockerfile, ...)
type ByFilename struct{}

func (ByFilename) Name() string { return "filename" }

func (ByFilename) Detect(path string, _ []byte) (string, bool) {
	return pick(enry.GetLanguagesByFilename(filepath.Base(path), nil, nil))
}

// 📛 ByExtension matches the file extension. Extensions shared by several
// languages are settled with content heuristics, then the bayesian classifier
// limited to those candidates.
type ByExtension struct{}

func (ByExtension) Name() string { return "extension" }

func (ByExtension) Detect(path string, content []byte) (string, bool) {
	candidates := enry.GetLanguagesByExtension(path, content, nil)
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}

	if lang, safe := enry.GetLanguageByContent(filepath.Base(path), content); safe && lang != "" {
		return lang, true
	}
	if lang, _ := enry.GetLanguageByClassifier(content, candidates); lang != "" {
		return lang, true
	}
	return candidates[0], true
}

// 📜 ByShebang reads the interpreter line
type ByShebang struct{}

func (ByShebang) Name() string { return "shebang" }

func (ByShebang) Detect(_ string, content []byte) (string, bool) {
	return pick(enry.GetLanguagesByShebang("", content, nil))
}

// 📜 ByModeline reads vim and emacs modelines
type ByModeline struct{}

func (ByModeline) Name() string { return "modeline" }

func (ByModeline) Detect(_ string, content []byte) (string, bool) {
	return pick(enry.GetLanguagesByModeline("", content, nil))
}

// 🔧 Func adapts a function to Strategy, mostly for tests and overrides
type Func struct {
	Label string
	Fn    func(path string, content []byte) (string, bool)
}

func (f Func) Name() string { return f.Label }

func (f Func) Detect(path string, content []byte) (string, bool) {
	return f.Fn(path, content)
}

// pick accepts only an unambiguous answer
func pick(candidates []string) (string, bool) {
	if len(candidates) == 1 && candidates[0] != "" {
		return candidates[0], true
	}
	return "", false
}

// 📚 Language describes a language known to the classifier
type Language struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Extensions []string `json:"extensions"`
}

// 📚 Languages lists every language go-enry knows, sorted by name
func Languages() []Language {
	byName := make(map[string]*Language)
	for ext, langs := range data.LanguagesByExtension {
		for _, name := range langs {
			l, ok := byName[name]
			if !ok {
				l = &Language{Name: name, Type: typeName(name)}
				byName[name] = l
			}
			l.Extensions = append(l.Extensions, ext)
		}
	}

	out := make([]Language, 0, len(byName))
	for _, l := range byName {
		sort.Strings(l.Extensions)
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func typeName(language string) string {
	switch enry.GetLanguageType(language) {
	case enry.Programming:
		return "programming"
	case enry.Markup:
		return "markup"
	case enry.Data:
		return "data"
	case enry.Prose:
		return "prose"
	default:
		return "unknown"
	}
}

// IsVendor reports paths go-enry treats as vendored or third-party
func IsVendor(path string) bool {
	return enry.IsVendor(path)
}
