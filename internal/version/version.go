// Package version holds build metadata populated via ldflags:
//
//	go build -ldflags "-X github.com/coinbase/cb-rsa-go/internal/version.Version=v1.2.3"
package version

var (
	Version = "v0.0.0-in-progress"
	Commit  = "unknown"
)

// String returns "<version> (<commit>)".
func String() string {
	return Version + " (" + Commit + ")"
}
