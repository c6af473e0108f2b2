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

package opts

import (
	"io"

	"github.com/walteh/tokenalyzer/pkg/config"
	"github.com/walteh/tokenalyzer/pkg/log"
)

// RootOpts is shared by every subcommand. It is filled in by the root
// command's pre-run, after flags are parsed.
type RootOpts struct {
	Config *config.Config
	Logger *log.Logger
	Stdout io.Writer // reports
	Stderr io.Writer // progress and console messages
}
