// Package version exposes build information stamped at link time
package version

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. version, commit and date are set
// via -ldflags "-X 'bangcheong/internal/core/version.version=v0.1.0' ..."
func Info() BuildInfo {
	return BuildInfo{
		Service: "bangcheong",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
