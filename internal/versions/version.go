// Package versions reports build information for statusbot.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

const unknown = "unknown"

// Build information, set with -ldflags "-X github.com/mcstatusbot/statusbot/internal/versions.Version=..."
var (
	Version   = "dev"
	Commit    = unknown
	BuildDate = unknown
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the build information of the running binary
func GetVersionInfo() Info {
	commit, buildDate := Commit, BuildDate
	if Version == "dev" {
		commit, buildDate = fromBuildInfo(commit, buildDate)
	}
	return resolve(Version, commit, buildDate)
}

// fromBuildInfo fills unknown values from the VCS stamp of a dev build
func fromBuildInfo(commit, buildDate string) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, buildDate
	}
	for _, setting := range info.Settings {
		switch {
		case setting.Key == "vcs.revision" && commit == unknown:
			commit = setting.Value
		case setting.Key == "vcs.time" && buildDate == unknown:
			buildDate = setting.Value
		}
	}
	return commit, buildDate
}

func resolve(version, commit, buildDate string) Info {
	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 MST")
	}
	if version == "dev" {
		version = fmt.Sprintf("build-%.8s", commit)
	}
	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
