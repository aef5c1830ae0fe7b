package version

// Set at build time, e.g.
// go build -ldflags "-X github.com/emailgenx/emailgenx/internal/version.Version=v0.2.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// String formats the build information for CLI output.
func String() string {
	return Version + " (commit " + Commit + ", built " + BuildTime + ")"
}
