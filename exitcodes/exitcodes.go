// Package exitcodes defines the standard exit codes used by op-unit.
package exitcodes

// Exit code constants used by test binaries embedding op-unit
// These constants define the exit codes the engine reports through the
// host process when it exits:
//
// * Success (0): Used when every executed test passes (including empty runs)
// * TestFailure (1): Used when one or more tests fail, abort or crash
// * UsageErr (2): Used for configuration and usage errors, reported before any test runs
// * WorkerAborted (3): Internal; a worker process signalling a fatal assertion
const (
	Success       = 0 // All tests pass
	TestFailure   = 1 // Test failures
	UsageErr      = 2 // Configuration or usage errors
	WorkerAborted = 3 // Worker-only: test ended by a fatal assertion
)
