// Package unit is a unit test execution engine that embeds into the
// program under test. The host registers named test cases and hands
// control to Main (or Suite.Run) from its main function; the resulting
// binary becomes its own test runner. It parses the command line,
// selects tests by name pattern, executes each one inline or isolated
// in a child process, and reports results as console text, TAP or
// JUnit XML.
//
//	func main() {
//		unit.Main(
//			unit.Case{Name: "parser", Fn: testParser},
//			unit.Case{Name: "codec/roundtrip", Fn: testRoundtrip},
//		)
//	}
//
//	func testParser(t *unit.T) {
//		v, err := Parse("12")
//		t.Assert(err == nil, "Parse succeeds")
//		t.Check(v == 12, "Parse returns 12")
//	}
//
// Run the built binary with --help for the full command line surface.
package unit
