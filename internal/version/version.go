// Package version holds build metadata injected through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"  // -X .../version.Version=v0.3.0
	Commit    = "none" // -X .../version.Commit=abcd123
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// Info is the build metadata reported by the CLI and the infra endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
	}
}

// String renders the one-line form printed by `linkfold --version`.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", i.Version, i.Commit, i.BuildDate, i.GoVersion)
}
