// Package dobbytest provides public constants for tools that wrap the
// dobbytest CLI, such as CI scripts checking its exit status.
package dobbytest

// Exit codes returned by the dobbytest CLI.
//
// A completed run exits with ExitSuccess even when individual tests fail;
// the pass/fail split is reported in the printed summary.
const (
	// ExitSuccess indicates the command completed.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure outside of the tests themselves.
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration or command line.
	ExitConfigError = 2

	// ExitEnvError indicates an unusable environment (assets directory missing, etc.).
	ExitEnvError = 3

	// ExitInterrupted indicates the run was stopped by SIGINT or SIGTERM.
	ExitInterrupted = 130
)
