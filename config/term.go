package config

import (
	"fmt"
	"io"
	"os"
)

// TerminalIO is where rbgate reads input and writes its log. In a
// pre-receive hook, both output streams are relayed to the pushing client.
type TerminalIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var DefaultTermIO = TerminalIO{
	Stdin:  os.Stdin,
	Stdout: os.Stdout,
	Stderr: os.Stderr,
}

func (t *TerminalIO) Printf(msg string, args ...interface{}) {
	fmt.Fprintf(t.Stdout, msg, args...)
}
