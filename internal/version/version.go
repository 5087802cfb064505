// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Surface build-time VCS information through --version.
package version

import (
	"runtime/debug"
)

// GetVersion derives a version string from embedded build info: the module
// version when tagged, otherwise the short VCS revision, with a dirty
// marker when the tree was modified. Falls back to "dev".
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	version := info.Main.Version
	if version == "(devel)" || version == "" {
		version = ""
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				version = setting.Value
				if len(version) > 7 {
					version = version[:7]
				}
				break
			}
		}
	}
	if version == "" {
		return "dev"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.modified" && setting.Value == "true" {
			return version + " (dirty)"
		}
	}
	return version
}
