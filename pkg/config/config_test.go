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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLoad(t *testing.T) {
	t.Setenv("TOKENALYZER_TEST_TOKEN", "from_env")

	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "full_yaml",
			filename: ".tokenalyzer.yaml",
			config: `
format: json
workers: 4
ignore:
  - "**/testdata/**"
  - "docs"
skip_vendor: true
max_file_size: 1 MiB
keep_workspace: true
archive_format: tarball
ref_type: tag
tokenizer:
  model: gpt-4
  offline: false
github:
  token: abc
  api_url: https://ghe.example.com/api/v3/
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "json", cfg.Format, "format should match")
				assert.Equal(t, 4, cfg.Workers, "workers should match")
				assert.Equal(t, []string{"**/testdata/**", "docs"}, cfg.Ignore, "ignore should match")
				assert.True(t, cfg.SkipVendor, "skip_vendor should be true")
				assert.Equal(t, int64(1<<20), cfg.MaxFileSizeBytes(), "max file size should be parsed")
				assert.True(t, cfg.KeepWorkspace)
				assert.Equal(t, "tarball", cfg.ArchiveFormat)
				assert.Equal(t, "tag", cfg.RefType)
				assert.Equal(t, "gpt-4", cfg.TokenizerOptions().Model)
				assert.Empty(t, cfg.TokenizerOptions().Encoding, "model should win over default encoding")
				assert.False(t, cfg.TokenizerOptions().Offline)
				assert.Equal(t, "abc", cfg.ProviderOptions().Token)
				assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.ProviderOptions().APIURL)
			},
		},
		{
			name:     "minimal_yaml_defaults",
			filename: "config.yml",
			config:   "workers: 2\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "table", cfg.Format, "format should have default value")
				assert.Equal(t, 2, cfg.Workers)
				assert.Equal(t, "zip", cfg.ArchiveFormat, "archive format should have default value")
				assert.Equal(t, "branch", cfg.RefType)
				assert.Equal(t, "cl100k_base", cfg.TokenizerOptions().Encoding)
				assert.True(t, cfg.TokenizerOptions().Offline, "offline should default to true")
				assert.Equal(t, int64(0), cfg.MaxFileSizeBytes())
			},
		},
		{
			name:     "empty_yaml",
			filename: "empty.yaml",
			config:   "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 1, cfg.Workers)
			},
		},
		{
			name:     "hcl_with_env",
			filename: "config.hcl",
			config: `
format  = "yaml"
workers = 3
ignore  = ["vendor/**"]

tokenizer {
  encoding = "o200k_base"
}

github {
  token = env.TOKENALYZER_TEST_TOKEN
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "yaml", cfg.Format)
				assert.Equal(t, 3, cfg.Workers)
				assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
				assert.Equal(t, "o200k_base", cfg.TokenizerOptions().Encoding)
				assert.Equal(t, "from_env", cfg.GitHub.Token, "env should be readable from hcl")
			},
		},
		{
			name:     "json",
			filename: "config.json",
			config:   `{"format": "yml", "skip_vendor": true, "tokenizer": {"offline": true}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "yaml", cfg.Format, "yml alias should normalise")
				assert.True(t, cfg.SkipVendor)
			},
		},
		{
			name:     "toml",
			filename: "config.toml",
			config: `
format = "table"
workers = 8
max_file_size = "512kB"

[github]
api_url = "http://localhost:8080/"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Workers)
				assert.Equal(t, int64(512000), cfg.MaxFileSizeBytes())
				assert.Equal(t, "http://localhost:8080/", cfg.GitHub.APIURL)
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    "config.yaml",
			config:      "colour: blue\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			filename:    "config.json",
			config:      `{"colour": "blue"}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "toml_unknown_field",
			filename:    "config.toml",
			config:      "colour = \"blue\"\n",
			wantErr:     true,
			errContains: "parsing TOML",
		},
		{
			name:        "hcl_unknown_field",
			filename:    "config.hcl",
			config:      "colour = \"blue\"\n",
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "bad_format",
			filename:    "config.yaml",
			config:      "format: xml\n",
			wantErr:     true,
			errContains: "format",
		},
		{
			name:        "negative_workers",
			filename:    "config.yaml",
			config:      "workers: -1\n",
			wantErr:     true,
			errContains: "workers",
		},
		{
			name:        "bad_size",
			filename:    "config.yaml",
			config:      "max_file_size: lots\n",
			wantErr:     true,
			errContains: "max_file_size",
		},
		{
			name:        "bad_glob",
			filename:    "config.yaml",
			config:      "ignore: ['[']\n",
			wantErr:     true,
			errContains: "invalid pattern",
		},
		{
			name:        "bad_archive_format",
			filename:    "config.yaml",
			config:      "archive_format: rar\n",
			wantErr:     true,
			errContains: "archive_format",
		},
		{
			name:        "unsupported_extension",
			filename:    "config.ini",
			config:      "format=table\n",
			wantErr:     true,
			errContains: "no parser",
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644), "writing config file should succeed")

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, path, cfg.Location(), "location should be recorded")
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: ".tokenalyzer.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "CONFIG.JSON", want: &JSONParser{}},
		{name: "toml_file", filename: "config.toml", want: &TOMLParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "parser should be nil")
				return
			}
			assert.IsType(t, tt.want, got, "parser type should match")
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults_when_nothing_found", func(t *testing.T) {
		cfg, err := Resolve(ctx, "", t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, cfg.Location())
		assert.Equal(t, "table", cfg.Format)
		assert.Equal(t, 1, cfg.Workers)
		assert.Contains(t, cfg.String(), "defaults")
	})

	t.Run("yaml_found_before_toml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tokenalyzer.toml"), []byte("workers = 9\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tokenalyzer.yaml"), []byte("workers: 5\n"), 0o644))

		cfg, err := Resolve(ctx, "", dir)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Workers)
		assert.Equal(t, filepath.Join(dir, ".tokenalyzer.yaml"), cfg.Location())
	})

	t.Run("explicit_path_wins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tokenalyzer.yaml"), []byte("workers: 5\n"), 0o644))
		explicit := filepath.Join(t.TempDir(), "other.json")
		require.NoError(t, os.WriteFile(explicit, []byte(`{"workers": 7}`), 0o644))

		cfg, err := Resolve(ctx, explicit, dir)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Workers)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TOKENALYZER_DOTENV_NEW=fresh\nTOKENALYZER_DOTENV_SET=from_file\n"), 0o644))

	t.Setenv("TOKENALYZER_DOTENV_SET", "from_shell")
	t.Setenv("TOKENALYZER_DOTENV_NEW", "")
	require.NoError(t, os.Unsetenv("TOKENALYZER_DOTENV_NEW"))

	require.NoError(t, LoadDotEnv(context.Background(), dir))
	assert.Equal(t, "fresh", os.Getenv("TOKENALYZER_DOTENV_NEW"), "new variables should be loaded")
	assert.Equal(t, "from_shell", os.Getenv("TOKENALYZER_DOTENV_SET"), "existing variables should win")

	require.NoError(t, LoadDotEnv(context.Background(), t.TempDir()), "missing .env should be ignored")
}
