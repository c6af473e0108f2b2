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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
// Expressions can read the environment through env, e.g. env.GITHUB_TOKEN.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Format        string   `hcl:"format,optional"`
		Workers       int      `hcl:"workers,optional"`
		Ignore        []string `hcl:"ignore,optional"`
		SkipVendor    bool     `hcl:"skip_vendor,optional"`
		MaxFileSize   string   `hcl:"max_file_size,optional"`
		KeepWorkspace bool     `hcl:"keep_workspace,optional"`
		ArchiveFormat string   `hcl:"archive_format,optional"`
		RefType       string   `hcl:"ref_type,optional"`
		Tokenizer     *struct {
			Encoding string `hcl:"encoding,optional"`
			Model    string `hcl:"model,optional"`
			Offline  *bool  `hcl:"offline,optional"`
		} `hcl:"tokenizer,block"`
		GitHub *struct {
			Token  string `hcl:"token,optional"`
			APIURL string `hcl:"api_url,optional"`
			WebURL string `hcl:"web_url,optional"`
		} `hcl:"github,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Format:        hclCfg.Format,
		Workers:       hclCfg.Workers,
		Ignore:        hclCfg.Ignore,
		SkipVendor:    hclCfg.SkipVendor,
		MaxFileSize:   hclCfg.MaxFileSize,
		KeepWorkspace: hclCfg.KeepWorkspace,
		ArchiveFormat: hclCfg.ArchiveFormat,
		RefType:       hclCfg.RefType,
	}
	if hclCfg.Tokenizer != nil {
		cfg.Tokenizer = TokenizerConfig{
			Encoding: hclCfg.Tokenizer.Encoding,
			Model:    hclCfg.Tokenizer.Model,
			Offline:  hclCfg.Tokenizer.Offline,
		}
	}
	if hclCfg.GitHub != nil {
		cfg.GitHub = GitHubConfig{
			Token:  hclCfg.GitHub.Token,
			APIURL: hclCfg.GitHub.APIURL,
			WebURL: hclCfg.GitHub.WebURL,
		}
	}

	return cfg, nil
}

// envObject exposes the process environment as a cty object
func envObject() cty.Value {
	vals := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vals[name] = cty.StringVal(value)
	}
	return cty.ObjectVal(vals)
}
