// Package version provides build information for the wish engine.
package version

// Version is the current release version. Override at build time with:
//
//	go build -ldflags "-X github.com/AaronLay10/WishEngine/internal/version.Version=x.y.z -X github.com/AaronLay10/WishEngine/internal/version.Commit=abc123"
var Version = "0.3.0"

// Commit is the source revision the binary was built from.
var Commit = "dev"

// String returns "version (commit)".
func String() string {
	return Version + " (" + Commit + ")"
}
