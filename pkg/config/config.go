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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tokenalyzer/pkg/provider"
	"github.com/walteh/tokenalyzer/pkg/report"
	"github.com/walteh/tokenalyzer/pkg/score"
)

// DefaultName is the config file looked up when none is given
const DefaultName = ".tokenalyzer"

// ErrNoParser is returned for a config file with an unsupported extension
var ErrNoParser = errors.Base("no parser for config file")

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔤 TokenizerConfig selects the BPE encoding
type TokenizerConfig struct {
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Offline  *bool  `json:"offline,omitempty" yaml:"offline,omitempty" toml:"offline,omitempty"`
}

// 🐙 GitHubConfig configures the GitHub provider
type GitHubConfig struct {
	Token  string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty" toml:"api_url,omitempty"`
	WebURL string `json:"web_url,omitempty" yaml:"web_url,omitempty" toml:"web_url,omitempty"` // archive host, for GitHub Enterprise
}

// 📚 Config represents the complete configuration
type Config struct {
	Format        string          `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
	Workers       int             `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
	Ignore        []string        `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	SkipVendor    bool            `json:"skip_vendor,omitempty" yaml:"skip_vendor,omitempty" toml:"skip_vendor,omitempty"`
	MaxFileSize   string          `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty" toml:"max_file_size,omitempty"` // e.g. "1 MiB"; empty is unlimited
	KeepWorkspace bool            `json:"keep_workspace,omitempty" yaml:"keep_workspace,omitempty" toml:"keep_workspace,omitempty"`
	ArchiveFormat string          `json:"archive_format,omitempty" yaml:"archive_format,omitempty" toml:"archive_format,omitempty"`
	RefType       string          `json:"ref_type,omitempty" yaml:"ref_type,omitempty" toml:"ref_type,omitempty"`
	Tokenizer     TokenizerConfig `json:"tokenizer,omitempty" yaml:"tokenizer,omitempty" toml:"tokenizer,omitempty"`
	GitHub        GitHubConfig    `json:"github,omitempty" yaml:"github,omitempty" toml:"github,omitempty"`

	location string
	maxBytes int64
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	// defaults always validate
	_ = cfg.Validate()
	return cfg
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return errors.Errorf("format: %w", err)
	}
	cfg.Format = string(format)

	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	for _, p := range cfg.Ignore {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("ignore: invalid pattern %q", p)
		}
	}

	cfg.maxBytes = 0
	if cfg.MaxFileSize != "" {
		n, err := humanize.ParseBytes(cfg.MaxFileSize)
		if err != nil {
			return errors.Errorf("max_file_size: %w", err)
		}
		cfg.maxBytes = int64(n)
	}

	archive, err := provider.ParseArchiveFormat(cfg.ArchiveFormat)
	if err != nil {
		return errors.Errorf("archive_format: %w", err)
	}
	cfg.ArchiveFormat = string(archive)

	refType, err := provider.ParseRefType(cfg.RefType)
	if err != nil {
		return errors.Errorf("ref_type: %w", err)
	}
	cfg.RefType = string(refType)

	if cfg.Tokenizer.Encoding == "" && cfg.Tokenizer.Model == "" {
		cfg.Tokenizer.Encoding = score.DefaultEncoding
	}
	if cfg.Tokenizer.Offline == nil {
		offline := true
		cfg.Tokenizer.Offline = &offline
	}

	return nil
}

// MaxFileSizeBytes returns max_file_size in bytes, 0 for unlimited
func (cfg *Config) MaxFileSizeBytes() int64 {
	return cfg.maxBytes
}

// TokenizerOptions converts the tokenizer section for score.NewTokenScorer
func (cfg *Config) TokenizerOptions() score.TokenizerOptions {
	offline := cfg.Tokenizer.Offline == nil || *cfg.Tokenizer.Offline
	return score.TokenizerOptions{
		Encoding: cfg.Tokenizer.Encoding,
		Model:    cfg.Tokenizer.Model,
		Offline:  offline,
	}
}

// ProviderOptions converts the github section for provider factories
func (cfg *Config) ProviderOptions() provider.Options {
	return provider.Options{Token: cfg.GitHub.Token, APIURL: cfg.GitHub.APIURL, WebURL: cfg.GitHub.WebURL}
}

// Location returns the file the config was read from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	src := cfg.location
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("%s: format=%s workers=%d archive=%s ignore=%d", src, cfg.Format, cfg.Workers, cfg.ArchiveFormat, len(cfg.Ignore))
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrNoParser, path)
	}

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// searchExts is the lookup order used by Find
var searchExts = []string{".yaml", ".yml", ".hcl", ".json", ".toml"}

// 🔍 Find looks for .tokenalyzer.<ext> in dir, YAML first
func Find(dir string) (string, bool) {
	for _, ext := range searchExts {
		candidate := filepath.Join(dir, DefaultName+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// 🎯 Resolve loads path when given, otherwise the config found in dir,
// otherwise the defaults
func Resolve(ctx context.Context, path, dir string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	if found, ok := Find(dir); ok {
		return Load(ctx, found)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
	return Default(), nil
}
