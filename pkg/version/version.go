// Package version carries build metadata for the todo binary.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

const Version = "0.3.0"

// BuildInfo contains build information
var BuildInfo = struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
}{
	Version:   Version,
	GoVersion: runtime.Version(),
}

// SetBuildInfo is called from main with values injected through -ldflags.
func SetBuildInfo(commit, date string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
}

// Short returns the one-line version string.
func Short() string {
	return fmt.Sprintf("todo %s", BuildInfo.Version)
}

// Full returns detailed version information
func Full() string {
	var b strings.Builder
	fmt.Fprintf(&b, "todo %s\n", BuildInfo.Version)
	fmt.Fprintf(&b, "Go Version: %s\n", BuildInfo.GoVersion)
	if BuildInfo.GitCommit != "" {
		fmt.Fprintf(&b, "Git Commit: %s\n", BuildInfo.GitCommit)
	}
	if BuildInfo.BuildDate != "" {
		fmt.Fprintf(&b, "Build Date: %s\n", BuildInfo.BuildDate)
	}
	return b.String()
}
