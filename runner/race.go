//go:build race

package runner

// raceEnabled reports whether the binary was built with the race
// detector.
const raceEnabled = true
