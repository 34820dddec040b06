// Package console provides the status-prefixed output used by the tools
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Verbose controls whether debug output is enabled
var Verbose bool

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout

	infoPrefix    = color.New(color.FgCyan)
	successPrefix = color.New(color.FgGreen)
	warnPrefix    = color.New(color.FgYellow)
	errorPrefix   = color.New(color.FgRed)
	debugPrefix   = color.New(color.FgBlue)
)

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// SetOutput redirects all output. Colors are disabled for anything but stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
}

func printf(prefix *color.Color, tag, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, prefix.Sprint(tag)+" "+format+"\n", args...)
}

// Info prints an informational line
func Info(format string, args ...interface{}) {
	printf(infoPrefix, "[*]", format, args...)
}

// Success prints a success line
func Success(format string, args ...interface{}) {
	printf(successPrefix, "[+]", format, args...)
}

// Warn prints a warning line
func Warn(format string, args ...interface{}) {
	printf(warnPrefix, "[-]", format, args...)
}

// Error prints an error line
func Error(format string, args ...interface{}) {
	printf(errorPrefix, "[!]", format, args...)
}

// Debug prints only when Verbose is set
func Debug(format string, args ...interface{}) {
	if Verbose {
		printf(debugPrefix, "[D]", format, args...)
	}
}
