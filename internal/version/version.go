// Package version reports the build version shared by the binaries.
package version

import "runtime/debug"

// Version is set with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	Version = fromBuildInfo(debug.ReadBuildInfo())
}

// fromBuildInfo derives "dev (abc1234)" from VCS build settings.
func fromBuildInfo(info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return "dev"
	}
	var hash string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				hash = s.Value[:7]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if hash == "" {
		return "dev"
	}
	if dirty {
		hash += "-dirty"
	}
	return "dev (" + hash + ")"
}
