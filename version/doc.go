// Package version carries build information for the whisperd binary.
//
// Version, commit, and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/whisperd/version.Version=1.2.0 \
//	  -X github.com/kbukum/whisperd/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/whisperd
//
// Anything not injected is filled from the module's embedded VCS build
// settings when available.
package version
