// Package version provides build information for the gones NES emulator.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
	Arch      string
}

// GetBuildInfo returns detailed build information, filling in VCS
// fields from the binary's embedded build info when not set via
// -ldflags.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = setting.Value
				}
			}
		}
	}

	return info
}

// String returns a one-line human-readable version string.
func (b BuildInfo) String() string {
	s := fmt.Sprintf("gones version %s", b.Version)
	if b.GitCommit != "unknown" {
		commit := b.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		s += fmt.Sprintf(" (commit %s)", commit)
	}
	if b.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, b.BuildTime); err == nil {
			s += fmt.Sprintf(" built on %s", t.Format("2006-01-02 15:04:05"))
		} else {
			s += fmt.Sprintf(" built on %s", b.BuildTime)
		}
	}
	s += fmt.Sprintf(" with %s for %s/%s", b.GoVersion, b.Platform, b.Arch)
	return s
}

// PrintBuildInfo prints formatted build information to stdout.
func PrintBuildInfo() {
	fmt.Println(GetBuildInfo().String())
}
