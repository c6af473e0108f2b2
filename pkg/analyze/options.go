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

// 👀 VisitStatus tells what happened to a visited regular file
type VisitStatus int

const (
	Counted VisitStatus = iota
	SkippedUndecodable
	SkippedUnclassified
	SkippedUnreadable
	SkippedTooLarge
)

func (s VisitStatus) String() string {
	switch s {
	case Counted:
		return "counted"
	case SkippedUndecodable:
		return "undecodable"
	case SkippedUnclassified:
		return "unclassified"
	case SkippedUnreadable:
		return "unreadable"
	case SkippedTooLarge:
		return "too large"
	default:
		return "unknown"
	}
}

// Skipped reports whether the file contributed nothing
func (s VisitStatus) Skipped() bool {
	return s != Counted
}

// 📄 FileVisit describes one processed file
type FileVisit struct {
	Path     string // slash path relative to the analysis root
	Language string // empty unless Status is Counted
	Size     int64
	Status   VisitStatus
}

// 👀 Observer is told about every regular file the engine processes.
// Symlinks are not followed and are never reported, whatever they point at.
// With more than one worker it is called from several goroutines.
type Observer interface {
	FileVisited(v FileVisit)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(v FileVisit)

// FileVisited implements Observer
func (f ObserverFunc) FileVisited(v FileVisit) {
	f(v)
}

type options struct {
	workers     int
	observer    Observer
	ignore      []string
	skipVendor  bool
	maxFileSize int64
}

func defaultOptions() options {
	return options{workers: 1}
}

// ⚙️ Option configures an Engine
type Option func(*options)

// WithWorkers sets how many files are classified and scored at once.
// Values below 2 select the sequential walk.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithObserver registers an observer for visited files. Symlinks are not
// visited, so they are never reported.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithIgnore adds doublestar globs matched against root-relative slash
// paths. A matching directory is not descended into.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithSkipVendor prunes vendored and third-party paths (node_modules, vendor, ...)
func WithSkipVendor(skip bool) Option {
	return func(o *options) {
		o.skipVendor = skip
	}
}

// WithMaxFileSize skips files larger than n bytes; 0 means no limit
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxFileSize = n
	}
}
