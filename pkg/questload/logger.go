package questload

// Logger receives printf-style progress and diagnostics. Verbose lines are
// dropped unless verbose mode is on; Info and Error always print.
// Implementations must tolerate concurrent calls.
type Logger interface {
	Verbose(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}
