// Package misc keeps build time information.
package misc

// Set by the linker: -ldflags "-X apx/misc.version=... -X apx/misc.gitHash=..."
var (
	appName = "apx"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
