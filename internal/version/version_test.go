/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package version

import "testing"

func TestGet_Ldflags(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	Version = "v0.3.0"
	if got := Get(); got != "v0.3.0" {
		t.Errorf("expected ldflags version, got %q", got)
	}
	if got := UserAgent(); got != "qscan/v0.3.0" {
		t.Errorf("unexpected user agent %q", got)
	}
}

func TestInfo(t *testing.T) {
	savedVersion, savedCommit, savedTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = savedVersion, savedCommit, savedTime })

	Version, GitCommit, BuildTime = "v0.3.0", "unknown", "unknown"
	info := Info()
	if info.Commit != "" || info.BuildTime != "" {
		t.Errorf("unknown values should be omitted, got %+v", info)
	}
	if info.String() != "v0.3.0" {
		t.Errorf("unexpected string %q", info.String())
	}

	GitCommit, BuildTime = "abcdef1234", "2026-01-02"
	info = Info()
	if got := info.String(); got != "v0.3.0 (commit abcdef1)" {
		t.Errorf("unexpected string %q", got)
	}
	if info.BuildTime != "2026-01-02" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}
