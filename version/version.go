// Package version reports build information for the loghound binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via ldflags, e.g. -X go.jacobcolvin.com/loghound/version.Version=v1.2.3.
var (
	Version   string
	Branch    string
	BuildDate string
)

// Info describes a build.
type Info struct {
	Version   string `json:"version"             yaml:"version"`
	Revision  string `json:"revision"            yaml:"revision"`
	Branch    string `json:"branch,omitempty"    yaml:"branch,omitempty"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string `json:"go_version"          yaml:"go_version"`
	Platform  string `json:"platform"            yaml:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info.withDefaults()
	}

	if info.Version == "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	modified := false

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if modified {
		info.Revision += "-dirty"
	}

	return info.withDefaults()
}

func (i Info) withDefaults() Info {
	if i.Version == "" {
		i.Version = "dev"
	}

	return i
}

// String renders the information on a single line.
func (i Info) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "loghound %s (revision %s", i.Version, i.Revision)

	if i.Branch != "" {
		fmt.Fprintf(&b, ", branch %s", i.Branch)
	}

	if i.BuildDate != "" {
		fmt.Fprintf(&b, ", built %s", i.BuildDate)
	}

	fmt.Fprintf(&b, ") %s %s", i.GoVersion, i.Platform)

	return b.String()
}
