// Build information is injected at link time, e.g.
//
//	go build -ldflags "-X github.com/nobletooth/octa/pkg/utils.Version=v0.3.0 \
//	  -X github.com/nobletooth/octa/pkg/utils.Commit=$(git rev-parse HEAD)" ./cmd/octa
//
// CAUTION: This file shouldn't be removed or else the link-time flags wouldn't have anything to set.

package utils

import (
	"log/slog"
	"strconv"
	"time"
)

// devVersion is reported when no version was linked in; it still is a valid semantic version.
const devVersion = "v0.0.0-dev"

var (
	TestMode   string // Should be true when running tests.
	IsTestMode bool
	Version    string
	Commit     string
	BuildTime  string
	StartTime  time.Time
)

func init() {
	StartTime = time.Now()

	// If build info is not set, make that clear.
	if Version == "" {
		Version = devVersion
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if BuildTime == "" {
		BuildTime = "unknown"
	}
	if len(TestMode) > 0 {
		if isTestMode, err := strconv.ParseBool(TestMode); err == nil {
			IsTestMode = isTestMode
		} else {
			slog.Warn("Failed to parse TestMode build flag, defaulting to false", "error", err)
		}
	}
}
