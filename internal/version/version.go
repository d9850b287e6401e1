package version

// Build information set by ldflags
var (
	Version = "1.0"     // Set by goreleaser: -X github.com/mrtigerst/tdm/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/mrtigerst/tdm/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/mrtigerst/tdm/internal/version.Date={{.Date}}
)
