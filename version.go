package loopbar

import (
	"fmt"
	"runtime"
)

// Version is the semantic version of the loopbar module.
const Version = "0.3.0"

// Build details stamped with -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/loopbar.gitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/simonhull/loopbar.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/loopbar
var (
	gitCommit = "unknown"
	buildTime = "unknown"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// GetVersionInfo returns the version and build details. Fields not stamped
// at build time read "unknown".
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("loopbar %s (commit %s, built %s, %s %s)",
		v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform)
}
