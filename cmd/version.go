package cmd

import (
	"fmt"
	"io"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "2.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// printVersion writes version information to w.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "medagent v%s\n", Version)
	fmt.Fprintf(w, "Build: %s\n", BuildTime)
	fmt.Fprintf(w, "Commit: %s\n", GitCommit)
}
