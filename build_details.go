package wirecrab

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/G-USI/wirecrab.version=..." in release
// builds.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Version returns the release version. Binaries built with "go install"
// report their module version; builds from a checkout report "dev".
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return version
}

// Commit returns the git commit the binary was built from, or "unknown".
func Commit() string { return commit }

// BuildTime returns the RFC3339 build timestamp, or "unknown".
func BuildTime() string { return buildTime }

// GoVersion returns the Go runtime version the binary was built with.
func GoVersion() string { return runtime.Version() }

// UserAgent is sent with every remote document request.
func UserAgent() string {
	return "wirecrab/" + Version()
}

// BuildInfo summarizes the build metadata for "wirecrab version --long".
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild Time: %s\nGo Version: %s",
		Version(), Commit(), BuildTime(), GoVersion())
}
