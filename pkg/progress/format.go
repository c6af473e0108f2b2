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

package progress

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/walteh/tokenalyzer/pkg/analyze"
)

// 📝 Formatter renders progress as plain text for logs and spinners
type Formatter struct{}

// FormatProgress formats a progress message with percentage
func (Formatter) FormatProgress(current, total int64) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatBytes formats a download position; total < 0 means unknown size
func (Formatter) FormatBytes(written, total int64) string {
	if total < 0 {
		return fmt.Sprintf("📥 Downloaded %s", humanize.Bytes(uint64(written)))
	}
	return fmt.Sprintf("📥 Downloaded %s of %s", humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)))
}

// FormatVisit formats one visited file
func (Formatter) FormatVisit(v analyze.FileVisit) string {
	switch v.Status {
	case analyze.Counted:
		return fmt.Sprintf("✨ %s (%s)", v.Path, v.Language)
	case analyze.SkippedUndecodable:
		return fmt.Sprintf("🚫 %s: not utf-8", v.Path)
	case analyze.SkippedUnclassified:
		return fmt.Sprintf("❔ %s: unknown language", v.Path)
	case analyze.SkippedUnreadable:
		return fmt.Sprintf("❌ %s: unreadable", v.Path)
	case analyze.SkippedTooLarge:
		return fmt.Sprintf("🐘 %s: too large (%s)", v.Path, humanize.Bytes(uint64(v.Size)))
	default:
		return fmt.Sprintf("👀 %s", v.Path)
	}
}

// FormatFiles summarises counted and skipped files
func (Formatter) FormatFiles(counted, skipped int) string {
	return fmt.Sprintf("🔍 %s files counted, %s skipped", humanize.Comma(int64(counted)), humanize.Comma(int64(skipped)))
}
