// Package version reports build metadata for the tutor binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/prelims-tutor/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/prelims-tutor/internal/version.Commit=abc123
//	  -X github.com/soyeahso/prelims-tutor/internal/version.Date=2026-01-01"
//
// When Commit is left unset, the VCS stamp from the Go toolchain is used.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	commit, date := Commit, Date
	if commit == "unknown" {
		commit, date = fromBuildInfo(date)
	}
	return fmt.Sprintf("tutor %s (commit: %s, built: %s, %s/%s)",
		Version, short(commit), date, runtime.GOOS, runtime.GOARCH)
}

// fromBuildInfo reads vcs.revision and vcs.time stamped by go build.
func fromBuildInfo(date string) (string, string) {
	commit := "unknown"
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
	return commit, date
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
