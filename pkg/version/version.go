// Package version carries build identity injected at link time.
package version

// Set via -ldflags "-X github.com/7i6ht/math2visual-sub000/pkg/version.Version=...".
//
//nolint:gochecknoglobals // Link-time injection targets.
var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the Git hash the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)