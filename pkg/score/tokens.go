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
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"gitlab.com/tozd/go/errors"
)

// DefaultEncoding is the BPE encoding used when neither an encoding nor a
// model is configured
const DefaultEncoding = "cl100k_base"

// 🔤 TokenizerOptions selects the tokenization scheme
type TokenizerOptions struct {
	Encoding string // BPE encoding name, e.g. cl100k_base
	Model    string // model name, e.g. gpt-4; wins over Encoding when set
	Offline  bool   // load BPE ranks from the embedded loader instead of the network
}

// 🔤 TokenScorer counts tokens produced by a tiktoken encoding.
//
// The encoding object is built once and shared; Encode does not mutate it.
type TokenScorer struct {
	enc  *tiktoken.Tiktoken
	name string
}

// 🏭 NewTokenScorer builds the encoding described by opts
func NewTokenScorer(opts TokenizerOptions) (*TokenScorer, error) {
	if opts.Offline {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	}

	var (
		enc  *tiktoken.Tiktoken
		err  error
		name string
	)
	switch {
	case opts.Model != "":
		enc, err = tiktoken.EncodingForModel(opts.Model)
		name = opts.Model
	default:
		name = opts.Encoding
		if name == "" {
			name = DefaultEncoding
		}
		enc, err = tiktoken.GetEncoding(name)
	}
	if err != nil {
		return nil, errors.Errorf("loading tokenizer %q: %w", name, err)
	}

	return &TokenScorer{enc: enc, name: name}, nil
}

// Name returns the encoding or model the scorer was built for
func (t *TokenScorer) Name() string {
	return t.name
}

// Score implements Scorer. Special-token text is encoded as ordinary text.
func (t *TokenScorer) Score(content string) int64 {
	if content == "" {
		return 0
	}
	return int64(len(t.enc.Encode(content, nil, nil)))
}

// 🏭 DefaultSet returns the line and token scorers keyed by Lines and Tokens
func DefaultSet(opts TokenizerOptions) (*Set, error) {
	tokens, err := NewTokenScorer(opts)
	if err != nil {
		return nil, err
	}

	set := NewSet()
	if err := set.Register(Lines, LineScorer{}); err != nil {
		return nil, err
	}
	if err := set.Register(Tokens, tokens); err != nil {
		return nil, err
	}
	return set, nil
}
