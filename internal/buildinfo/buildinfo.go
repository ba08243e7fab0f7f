package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// versionFrom returns the module version, falling back to the VCS revision
// for local builds, or "dev" when neither is recorded.
func versionFrom(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	rev := setting(info, "vcs.revision")
	if rev == "" {
		return "dev"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if setting(info, "vcs.modified") == "true" {
		rev += "-dirty"
	}
	return "dev-" + rev
}

// VersionWithTags returns the version string and tags if present.
func VersionWithTags() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return withTags(versionFrom(info), setting(info, "-tags"))
}

func withTags(version, tags string) string {
	tags = strings.TrimSpace(tags)
	if tags == "" {
		return version
	}
	return fmt.Sprintf("%s (tags: %s)", version, tags)
}
