package version

// Set at build time via -ldflags, e.g.
// go build -ldflags "-X github.com/overplay/spotify-broker/internal/version.Version=v0.2.0"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "none"

	// BuildTime is the timestamp of the build.
	BuildTime = "unknown"
)
