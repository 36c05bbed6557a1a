// Package terminal detects what the attached terminal can do.
//
// koictl uses it to decide on color and spinners. koi uses it only to pick
// a log sink, since the child owns the terminal once it starts.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY       bool
	StderrIsTTY bool
	StdinIsTTY  bool
	NoColor     bool
	Width       int
	Height      int
	ForceFlag   bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current process.
func Detect() *Info {
	return DetectFiles(os.Stdin, os.Stdout, os.Stderr)
}

// DetectFiles returns terminal information for the given standard streams.
// A nil file counts as not a terminal.
func DetectFiles(stdin, stdout, stderr *os.File) *Info {
	info := &Info{
		IsTTY:       isTerminal(stdout),
		StderrIsTTY: isTerminal(stderr),
		StdinIsTTY:  isTerminal(stdin),
		Width:       80,
		Height:      24,
	}

	if info.IsTTY {
		if w, h, err := term.GetSize(int(stdout.Fd())); err == nil {
			info.Width, info.Height = w, h
		}
	}

	// https://no-color.org/
	_, info.NoColor = os.LookupEnv("NO_COLOR")

	if os.Getenv("TERM") == "dumb" {
		info.NoColor = true
	}

	return info
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// StderrColorEnabled reports whether messages written to stderr may be
// colored. It is independent of stdout, so 2>file stays plain.
func (t *Info) StderrColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.StderrIsTTY && !t.NoColor
}

// Interactive reports whether a person is likely watching: both stdin and
// stderr are terminals.
func (t *Info) Interactive() bool {
	return t.StdinIsTTY && t.StderrIsTTY
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.StderrIsTTY && !t.NoColor && !t.ForceFlag
}
