// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with
// -ldflags "-X github.com/olegiv/college-calendar/internal/version.Version=v1.0.0 ...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// String formats the information for -version output.
func (i Info) String() string {
	return fmt.Sprintf("calendar %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
