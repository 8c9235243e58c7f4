// Command questload loads the English and Japanese quest sheets into the Quest table.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/questload/internal/cli"
	"github.com/vvka-141/questload/pkg/questload"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code; a panic maps to ExitPanic with its stack on stderr.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			code = questload.ExitPanic
		}
	}()

	if os.Getenv("QUESTLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}
	return questload.ExitCodeForError(cli.Execute())
}
