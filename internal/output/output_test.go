package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"

	"github.com/killuox/koi-launcher/internal/terminal"
	"github.com/killuox/koi-launcher/internal/testutil"
)

// testTerminal returns a terminal.Info for testing (non-TTY, no color).
func testTerminal() *terminal.Info {
	return &terminal.Info{
		IsTTY:   false,
		NoColor: true,
		Width:   80,
		Height:  24,
	}
}

type sample struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Count  int    `json:"count" yaml:"count" toml:"count"`
	Active bool   `json:"active" yaml:"active" toml:"active"`
}

func TestWriter_QuietSuppressesStdoutOnly(t *testing.T) {
	var stdout, stderr bytes.Buffer

	w := NewWriter(&stdout, &stderr, testTerminal())
	w.Quiet = true

	w.Print("print %d", 1)
	w.Println("println")
	w.Success("success")
	w.Warning("warning")
	w.Info("info")
	w.Muted("muted")
	w.Failure("still shown")
	w.Hint("and the hint")

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty in quiet mode", stdout.String())
	}

	want := XMark + " still shown\n  and the hint\n"
	if got := stderr.String(); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

func TestWriter_PrintJSONIgnoresQuiet(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())
	w.Quiet = true

	if err := w.PrintJSON(sample{Name: "koi", Count: 3, Active: true}); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	want := "{\n  \"name\": \"koi\",\n  \"count\": 3,\n  \"active\": true\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintJSON() = %q, want %q", got, want)
	}
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer

	if err := Encode(&buf, FormatYAML, []sample{{Name: "koi", Count: 3, Active: true}}); err != nil {
		t.Fatalf("Encode(yaml) error = %v", err)
	}

	want := "- name: koi\n  count: 3\n  active: true\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode(yaml) = %q, want %q", got, want)
	}
}

func TestEncode_TOML(t *testing.T) {
	type doc struct {
		Rows []sample `toml:"rows"`
	}

	var buf bytes.Buffer

	in := doc{Rows: []sample{{Name: "koi", Count: 3, Active: true}, {Name: "carp"}}}
	if err := Encode(&buf, FormatTOML, in); err != nil {
		t.Fatalf("Encode(toml) error = %v", err)
	}

	if !strings.Contains(buf.String(), "[[rows]]") {
		t.Fatalf("Encode(toml) = %q, want array of tables", buf.String())
	}

	var out doc
	if err := toml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("toml.Unmarshal() error = %v", err)
	}

	if len(out.Rows) != 2 || out.Rows[0] != in.Rows[0] || out.Rows[1] != in.Rows[1] {
		t.Errorf("decoded = %+v, want %+v", out.Rows, in.Rows)
	}
}

func TestEncode_FormatIsCaseInsensitive(t *testing.T) {
	var buf bytes.Buffer

	if err := Encode(&buf, "JSON", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Encode(JSON) error = %v", err)
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer

	err := Encode(&buf, "xml", sample{})
	if err == nil || !strings.Contains(err.Error(), `"xml"`) {
		t.Fatalf("Encode(xml) error = %v, want unsupported format", err)
	}
}

func TestWriter_Context(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, &bytes.Buffer{}, testTerminal())
	ctx := w.WithContext(context.Background())

	if got := FromContext(ctx); got != w {
		t.Error("FromContext() did not return stored writer")
	}
}

func TestWriter_SetNoColor(t *testing.T) {
	term := &terminal.Info{IsTTY: true, StderrIsTTY: true}
	w := NewWriter(&bytes.Buffer{}, &bytes.Buffer{}, term)

	w.SetNoColor(true)

	if w.Terminal().ColorEnabled() {
		t.Error("ColorEnabled() = true after SetNoColor(true)")
	}

	if w.Terminal().SpinnersEnabled() {
		t.Error("SpinnersEnabled() = true after SetNoColor(true)")
	}
}

func TestSpinner_DisabledWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		term  *terminal.Info
		quiet bool
		json  bool
	}{
		{name: "non-tty", term: testTerminal()},
		{name: "quiet", term: &terminal.Info{StderrIsTTY: true}, quiet: true},
		{name: "json", term: &terminal.Info{StderrIsTTY: true}, json: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			w := NewWriter(&stdout, &stderr, tt.term)
			w.Quiet = tt.quiet
			w.JSON = tt.json

			s := w.Spinner("Checking koi")
			s.Start()
			s.UpdateMessage("still checking")
			s.Stop()

			if stdout.Len() != 0 || stderr.Len() != 0 {
				t.Errorf("disabled spinner wrote stdout=%q stderr=%q", stdout.String(), stderr.String())
			}
		})
	}
}

func TestStatusMessages_Golden(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, &buf, testTerminal())

	w.Success("koi binary found")
	w.Warning("koi version could not be parsed")
	w.Info("Install directory: /opt/koi")
	w.Muted("Resolved from launcher location")
	w.Failure("koi binary not found")
	w.Hint("Reinstall the package")

	testutil.AssertGolden(t, buf.String(), "status_messages.golden")
}

func TestWriter_StderrColorFollowsStderrTerminal(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	tests := []struct {
		name      string
		term      *terminal.Info
		wantColor bool
	}{
		{name: "stderr redirected", term: &terminal.Info{IsTTY: true}},
		{name: "stderr terminal", term: &terminal.Info{IsTTY: true, StderrIsTTY: true}, wantColor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			color.NoColor = false

			w := NewWriter(&stdout, &stderr, tt.term)
			w.Failure("koi binary not found")
			w.Hint("Run 'koictl doctor'")

			if got := strings.Contains(stderr.String(), "\x1b["); got != tt.wantColor {
				t.Errorf("stderr = %q, escapes present = %v, want %v", stderr.String(), got, tt.wantColor)
			}
		})
	}
}
