/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version reports the qscan build identity.
package version

import (
	"runtime/debug"
)

// Set at build time via -ldflags "-X bokiquiz.dev/qscan/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo describes a qscan binary.
type BuildInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	BuildTime  string `json:"buildTime,omitempty"`
	Vocabulary int    `json:"vocabulary,omitempty"`
}

// Get returns the release version. Binaries installed with go install report
// their module version; local builds report "dev".
func Get() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	if rev := vcsRevision(); rev != "" {
		return "dev-" + rev
	}
	return "dev"
}

// Info returns the build identity. Unknown ldflags values are omitted.
func Info() BuildInfo {
	b := BuildInfo{Version: Get()}
	if GitCommit != "unknown" {
		b.Commit = GitCommit
	}
	if BuildTime != "unknown" {
		b.BuildTime = BuildTime
	}
	return b
}

// String renders the version with a short commit when one is known.
func (b BuildInfo) String() string {
	if b.Commit == "" {
		return b.Version
	}
	return b.Version + " (commit " + short(b.Commit) + ")"
}

// UserAgent is sent with vocabulary downloads.
func UserAgent() string {
	return "qscan/" + Get()
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return short(s.Value)
		}
	}
	return ""
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
