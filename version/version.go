// Package version reports the build of the swara tools.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version can be set at build time, e.g.
// go build -ldflags "-X github.com/idtap/swara/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short vcs revision of the build, suffixed with -dirty when the
// working tree was modified.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}()

func revision(settings []debug.BuildSetting) string {
	modified := false
	hash := ""
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.modified":
			modified = setting.Value == "true"
		case "vcs.revision":
			hash = setting.Value
			if len(hash) > 7 {
				hash = hash[:7]
			}
		}
	}
	if hash != "" && modified {
		return hash + "-dirty"
	}
	return hash
}

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()

// Describe is the one line printed by the version command.
func Describe() string {
	return fmt.Sprintf("swara %s (%s %s/%s)", VersionOrHash, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
