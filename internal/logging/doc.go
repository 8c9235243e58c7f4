// Package logging provides concrete implementations of the questload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr with thread-safe output
//   - NullLogger: Discards all messages (useful for testing)
//
// ProgressLogger adapts a Logger to questload.ProgressReporter for
// non-interactive runs.
package logging
