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

package commands

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/tokenalyzer/cmd/tokenalyzer/opts"
	"github.com/walteh/tokenalyzer/pkg/analyze"
	"github.com/walteh/tokenalyzer/pkg/classify"
	"github.com/walteh/tokenalyzer/pkg/log"
	"github.com/walteh/tokenalyzer/pkg/progress"
	"github.com/walteh/tokenalyzer/pkg/report"
	"github.com/walteh/tokenalyzer/pkg/score"
	"gitlab.com/tozd/go/errors"
)

// 🔍 analyzeDir profiles root with the configured engine and writes the
// report to stdout. A cancelled run still prints its partial report.
func analyzeDir(ctx context.Context, o *opts.RootOpts, root string, run log.Run, quiet bool) error {
	cfg := o.Config
	logger := zerolog.Ctx(ctx)

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	scorers, err := score.DefaultSet(cfg.TokenizerOptions())
	if err != nil {
		return errors.Errorf("creating scorers: %w", err)
	}

	var spinnerOut io.Writer
	if !quiet && format == report.FormatTable {
		spinnerOut = o.Stderr
	}
	files := progress.NewFiles(spinnerOut)

	engine := analyze.New(classify.Default(), scorers,
		analyze.WithWorkers(cfg.Workers),
		analyze.WithIgnore(cfg.Ignore...),
		analyze.WithSkipVendor(cfg.SkipVendor),
		analyze.WithMaxFileSize(cfg.MaxFileSizeBytes()),
		analyze.WithObserver(files),
	)

	if !quiet {
		o.Logger.StartRun(ctx, run)
	}

	start := time.Now()
	rep, aggErr := engine.Aggregate(ctx, root)
	files.Stop()
	if rep == nil {
		return errors.Errorf("analysing %s: %w", root, aggErr)
	}

	if err := report.Render(o.Stdout, rep, format); err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Debug().Dur("elapsed", elapsed).Int("languages", rep.Len()).Bool("incomplete", rep.Incomplete()).Msg("report written")

	if quiet {
		return aggErr
	}

	// stdout carries machine output, so echo a summary to the console
	if format != report.FormatTable {
		for i, row := range rep.Rows() {
			o.Logger.LogLanguage(ctx, languageLine(row, i == 0, files))
		}
	}
	o.Logger.EndRun(ctx)

	if aggErr != nil {
		o.Logger.Warning("analysis was cancelled, the report is incomplete")
		return aggErr
	}
	o.Logger.Successf("%s in %s", files.Summary(), elapsed.Round(time.Millisecond))
	return nil
}

func languageLine(row report.Row, total bool, files *progress.Files) log.LanguageLine {
	line := log.LanguageLine{
		Language:      row.Language,
		Lines:         row.LinesOfCode,
		Tokens:        row.Tokens,
		TokensPerLine: row.TokensPerLine,
		IsTotal:       total,
	}
	if total {
		line.Files = files.Counted()
	} else {
		line.Files = files.Files(row.Language)
	}
	return line
}
