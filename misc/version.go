// Package misc carries build time identification of the program.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X cssbust/misc.version=... -X cssbust/misc.gitHash=...".
var (
	appName = "cssbust"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns revision program was built from. When it was not set
// at link time VCS information recorded by the toolchain is used.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
