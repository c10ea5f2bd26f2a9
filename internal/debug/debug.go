// Package debug implements the gated trace logging SPEC_FULL.md's ambient
// stack section calls for: a package-level flag read once from
// GRAPHYDB_DEBUG, plus Logf/Printf helpers that no-op unless it (or
// SetVerbose) is set.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("GRAPHYDB_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// Enabled reports whether trace output is currently turned on.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose force-enables trace output regardless of GRAPHYDB_DEBUG,
// for callers (tests, for instance) that want it on programmatically.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet suppresses PrintNormal/PrintlnNormal output.
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool {
	return quietMode
}

// Logf writes a trace line to stderr when debugging is enabled.
func Logf(format string, args ...interface{}) {
	if Enabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Printf writes a trace line to stdout when debugging is enabled. The
// pattern compiler's own trace line goes through Logf instead, and only
// when tracing is enabled; a fetch's DEBUG=true option returns the
// compiled SQL to the caller without printing it.
func Printf(format string, args ...interface{}) {
	if Enabled() {
		fmt.Printf(format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled.
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled.
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}
