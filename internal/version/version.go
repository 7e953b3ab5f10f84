// Package version reports which mdbgw build is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X mdbgw/internal/version.Commit=...". When left empty,
// the VCS stamp embedded by the Go toolchain is used instead.
var (
	Version   = "1.0.0"
	Commit    = ""
	BuildDate = ""
)

// vcsStamp returns the revision and time the toolchain recorded, if any.
func vcsStamp() (revision, at string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	return revision, at
}

func commitAndDate() (string, string) {
	commit, date := Commit, BuildDate
	if commit == "" || date == "" {
		rev, at := vcsStamp()
		if commit == "" {
			commit = rev
		}
		if date == "" {
			date = at
		}
	}
	return commit, date
}

// Info returns the version, followed by a 7-character commit when known.
// Used in startup log lines.
func Info() string {
	commit, _ := commitAndDate()
	if len(commit) >= 7 {
		return fmt.Sprintf("%s (%s)", Version, commit[:7])
	}
	return Version
}

// Full is the text printed by --version.
func Full() string {
	commit, date := commitAndDate()
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("mdbgw %s\ncommit %s\nbuilt  %s", Version, commit, date)
}
