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

package provider

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidRef is returned for a repository reference ParseRef cannot read
var ErrInvalidRef = errors.Base("invalid repository reference")

// DefaultHost is assumed for bare owner/repo references
const DefaultHost = "github.com"

// 🏷️ RefType says how Ref should be resolved
type RefType string

const (
	RefBranch RefType = "branch"
	RefTag    RefType = "tag"
	RefCommit RefType = "commit"
)

// ParseRefType accepts branch, tag and commit; empty means branch
func ParseRefType(s string) (RefType, error) {
	switch RefType(strings.ToLower(s)) {
	case "", RefBranch:
		return RefBranch, nil
	case RefTag:
		return RefTag, nil
	case RefCommit, "sha":
		return RefCommit, nil
	}
	return "", errors.Errorf("%w: unknown ref type %q", ErrInvalidRef, s)
}

// 📍 RepoRef points at a repository and optionally a ref in it
type RepoRef struct {
	Host    string
	Owner   string
	Name    string
	Ref     string // empty selects the default branch
	RefType RefType
}

// FullName returns owner/name
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// String returns host/owner/name[@ref]
func (r RepoRef) String() string {
	s := fmt.Sprintf("%s/%s/%s", r.Host, r.Owner, r.Name)
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// 🔍 ParseRef reads owner/repo, host/owner/repo and https URLs, with an
// optional @ref suffix or a /tree/<branch> path.
func ParseRef(s string) (RepoRef, error) {
	raw := s
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}

	var ref string
	if idx := strings.LastIndex(s, "@"); idx != -1 {
		ref = s[idx+1:]
		s = s[:idx]
		if ref == "" {
			return RepoRef{}, errors.Errorf("%w: empty ref in %q", ErrInvalidRef, raw)
		}
	}
	s = strings.TrimSuffix(s, "/")

	parts := strings.Split(s, "/")
	host := DefaultHost
	if len(parts) > 0 && strings.Contains(parts[0], ".") {
		host = strings.ToLower(parts[0])
		parts = parts[1:]
	}

	if len(parts) < 2 {
		return RepoRef{}, errors.Errorf("%w: %q (expected owner/repo)", ErrInvalidRef, raw)
	}

	owner, name := parts[0], strings.TrimSuffix(parts[1], ".git")
	rest := parts[2:]
	switch {
	case len(rest) == 0:
	case rest[0] == "tree" && len(rest) > 1 && ref == "":
		ref = strings.Join(rest[1:], "/")
	default:
		return RepoRef{}, errors.Errorf("%w: %q (unexpected path %q)", ErrInvalidRef, raw, strings.Join(rest, "/"))
	}

	for _, seg := range []string{owner, name} {
		if !segmentPattern.MatchString(seg) || seg == "." || seg == ".." {
			return RepoRef{}, errors.Errorf("%w: %q (bad segment %q)", ErrInvalidRef, raw, seg)
		}
	}

	return RepoRef{Host: host, Owner: owner, Name: name, Ref: ref, RefType: RefBranch}, nil
}
