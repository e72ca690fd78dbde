// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info is the build information injected via ldflags.
type Info struct {
	Version   string // git tag, e.g. "v1.2.3"
	GitCommit string // short commit hash
	BuildTime string // RFC3339
}

// String formats the info for `landed -v`. Missing fields read "unknown".
func (i Info) String() string {
	return fmt.Sprintf("landed %s (commit: %s, built: %s)",
		orUnknown(i.Version), orUnknown(i.GitCommit), orUnknown(i.BuildTime))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
