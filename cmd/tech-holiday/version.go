package main

import "runtime/debug"

// version is stamped by release builds: -ldflags "-X main.version=v1.0.0".
var version = ""

// getVersion resolves the version to report: the ldflags stamp when present,
// the module version from build info for "go install @version" binaries,
// and "dev" for local builds.
func getVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}

	return "dev"
}
