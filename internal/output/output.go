// Package output handles koictl's human and machine-readable output.
//
// Human output (status lines, spinners) goes through Writer so commands can
// be tested against buffers and golden files. Structured output is encoded
// as JSON, YAML or TOML via Encode.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/killuox/koi-launcher/internal/terminal"
)

// Status symbols
const (
	CheckMark   = "✓"
	XMark       = "✗"
	WarningMark = "⚠"
	InfoMark    = "ℹ"
)

// Structured output formats accepted by Encode.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

type contextKey struct{}

// Writer handles CLI output with multiple modes.
type Writer struct {
	Out   io.Writer
	Err   io.Writer
	JSON  bool
	Quiet bool

	terminal *terminal.Info

	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	muted   *color.Color
}

// Default returns a Writer configured for stdout/stderr.
func Default() *Writer {
	return NewWriter(os.Stdout, os.Stderr, terminal.Detect())
}

// NewWriter creates a Writer with custom writers and terminal info.
func NewWriter(out, err io.Writer, term *terminal.Info) *Writer {
	w := &Writer{
		Out:      out,
		Err:      err,
		terminal: term,
		success:  color.New(color.FgGreen),
		failure:  color.New(color.FgRed),
		warning:  color.New(color.FgYellow),
		info:     color.New(color.FgCyan),
		muted:    color.New(color.FgHiBlack),
	}

	if !term.ColorEnabled() && !term.StderrColorEnabled() {
		color.NoColor = true
	}

	return w
}

// colorFor reports whether text written to dst may carry color. Each
// standard stream is judged by its own terminal state.
func (w *Writer) colorFor(dst io.Writer) bool {
	if dst == w.Err {
		return w.terminal.StderrColorEnabled()
	}

	return w.terminal.ColorEnabled()
}

// WithContext stores the Writer in the context.
func (w *Writer) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

// FromContext retrieves the Writer from context, or returns Default().
func FromContext(ctx context.Context) *Writer {
	if w, ok := ctx.Value(contextKey{}).(*Writer); ok {
		return w
	}

	return Default()
}

// Terminal returns the terminal info.
func (w *Writer) Terminal() *terminal.Info {
	return w.terminal
}

// SetNoColor disables colored output.
func (w *Writer) SetNoColor(disabled bool) {
	w.terminal.ForceFlag = disabled
	if disabled {
		color.NoColor = true
	}
}

// Print writes to stdout (respects quiet mode).
func (w *Writer) Print(format string, args ...any) {
	if !w.Quiet {
		fmt.Fprintf(w.Out, format, args...)
	}
}

// Println writes a line to stdout (respects quiet mode).
func (w *Writer) Println(args ...any) {
	if !w.Quiet {
		fmt.Fprintln(w.Out, args...)
	}
}

// PrintJSON outputs structured data as indented JSON. Quiet mode does not
// apply: a caller that asked for JSON wants it.
func (w *Writer) PrintJSON(v any) error {
	return Encode(w.Out, FormatJSON, v)
}

// Encode writes v to out in the given structured format.
func Encode(out io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	case FormatTOML:
		enc := toml.NewEncoder(out)
		enc.SetIndentTables(true)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("unsupported output format %q (allowed: json, yaml, toml)", format)
	}
}

func (w *Writer) writeStatus(dst io.Writer, tone *color.Color, prefix, message string) {
	if w.colorFor(dst) {
		tone.Fprint(dst, prefix+" ")
		fmt.Fprintln(dst, message)

		return
	}

	fmt.Fprintln(dst, prefix+" "+message)
}

// Success writes a success message with a checkmark.
func (w *Writer) Success(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.writeStatus(w.Out, w.success, CheckMark, fmt.Sprintf(format, args...))
}

// Failure writes an error message with an X mark to stderr. Never silenced.
func (w *Writer) Failure(format string, args ...any) {
	w.writeStatus(w.Err, w.failure, XMark, fmt.Sprintf(format, args...))
}

// Hint writes an indented follow-up line for a failure to stderr.
func (w *Writer) Hint(format string, args ...any) {
	msg := "  " + fmt.Sprintf(format, args...)

	if w.colorFor(w.Err) {
		w.muted.Fprintln(w.Err, msg)
		return
	}

	fmt.Fprintln(w.Err, msg)
}

// Warning writes a warning message.
func (w *Writer) Warning(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.writeStatus(w.Out, w.warning, WarningMark, fmt.Sprintf(format, args...))
}

// Info writes an info message.
func (w *Writer) Info(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.writeStatus(w.Out, w.info, InfoMark, fmt.Sprintf(format, args...))
}

// Muted writes muted/gray text.
func (w *Writer) Muted(format string, args ...any) {
	if w.Quiet {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if w.terminal.ColorEnabled() {
		w.muted.Fprintln(w.Out, msg)
		return
	}

	fmt.Fprintln(w.Out, msg)
}

// Spinner creates a spinner for long operations. It draws on stderr so it
// never mixes with structured stdout, and degrades to nothing when stderr is
// not a terminal or output is quiet or JSON.
func (w *Writer) Spinner(message string) *Spinner {
	if w.Quiet || w.JSON || !w.terminal.SpinnersEnabled() {
		return &Spinner{disabled: true}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w.Err
	s.Suffix = " " + message

	return &Spinner{spinner: s}
}

// Spinner wraps briandowns/spinner with graceful fallback.
type Spinner struct {
	spinner  *spinner.Spinner
	disabled bool
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.disabled {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears its line.
func (s *Spinner) Stop() {
	if !s.disabled {
		s.spinner.Stop()
	}
}

// UpdateMessage changes the spinner message.
func (s *Spinner) UpdateMessage(message string) {
	if !s.disabled {
		s.spinner.Suffix = " " + message
	}
}
