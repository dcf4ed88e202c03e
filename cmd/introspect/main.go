// introspect generates a C++ reflection header from declaration manifests.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"introspect/internal/pipeline"
)

// Exit codes.
const (
	exitUsage     = 1
	exitDiscovery = 2
	exitOutput    = 3
)

// errOutOfDate is returned by check when the header differs from the inputs.
var errOutOfDate = errors.New("header is out of date")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrDiscovery):
		return exitDiscovery
	case errors.Is(err, pipeline.ErrOutput):
		return exitOutput
	default:
		return exitUsage
	}
}
