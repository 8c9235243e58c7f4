package logging

import "github.com/vvka-141/questload/pkg/questload"

// ProgressLogger reports import phases through a Logger.
type ProgressLogger struct {
	logger questload.Logger
}

// NewProgressLogger returns a reporter that logs each phase as an Info line.
func NewProgressLogger(logger questload.Logger) *ProgressLogger {
	return &ProgressLogger{logger: logger}
}

// Report logs the phase and its detail.
func (p *ProgressLogger) Report(phase questload.Phase, detail string) {
	if detail == "" {
		p.logger.Info("%s", phase)
		return
	}
	p.logger.Info("%s: %s", phase, detail)
}

var (
	_ questload.Logger           = (*ConsoleLogger)(nil)
	_ questload.Logger           = (*NullLogger)(nil)
	_ questload.ProgressReporter = (*ProgressLogger)(nil)
)
