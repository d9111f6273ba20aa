package version

import "fmt"

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X github.com/oukeidos/typoduck/internal/version.Version=0.2.0 \
//	  -X github.com/oukeidos/typoduck/internal/version.Commit=abcdef1 \
//	  -X github.com/oukeidos/typoduck/internal/version.BuildDate=2026-01-30T12:00:00Z"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Name is the product name shown in the tray, dialogs and notifications.
const Name = "typoduck"

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuild: %s", Name, Version, Commit, BuildDate)
}

// Short is "typoduck vX.Y.Z".
func Short() string {
	return fmt.Sprintf("%s v%s", Name, Version)
}
