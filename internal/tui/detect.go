package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode says whether a person is watching the terminal.
type Mode int

const (
	ModeNonInteractive Mode = iota
	ModeInteractive
)

// Environment switches that force plain output, checked in order.
var plainOutputEnv = []string{"QUESTLOAD_NON_INTERACTIVE", "CI", "NO_COLOR"}

// DetectMode reports ModeInteractive only when none of the plain output
// switches is set and both stdin and stderr are terminals. Progress and
// prompts are drawn on stderr, so stdout may still be redirected.
func DetectMode() Mode {
	if PlainReason() != "" {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// PlainReason names what forces non-interactive mode, or "" when nothing does.
func PlainReason() string {
	for _, name := range plainOutputEnv {
		v := os.Getenv(name)
		if v == "" || (name == "QUESTLOAD_NON_INTERACTIVE" && v == "0") {
			continue
		}
		return name + " is set"
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "stdin is not a terminal"
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return "stderr is not a terminal"
	}
	return ""
}

// IsInteractive is shorthand for DetectMode() == ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
