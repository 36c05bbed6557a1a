package doctor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Printer is the styled output doctor results are rendered through.
type Printer interface {
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Failure(format string, args ...any)
	Muted(format string, args ...any)
}

// RenderResults writes one aligned line per result, plus its detail.
func RenderResults(p Printer, results []Result) {
	maxNameLen := 0
	for _, r := range results {
		maxNameLen = max(maxNameLen, len(r.Name))
	}

	width := maxNameLen + 4

	for _, r := range results {
		switch r.Status {
		case StatusPass:
			p.Success("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			p.Warning("%-*s%s", width, r.Name, r.Message)
		default:
			p.Failure("%-*s%s", width, r.Name, r.Message)
		}

		if r.Detail != "" {
			p.Muted("    %s", r.Detail)
		}
	}
}

// FormatSummary renders the pass/fail/warning counts line.
func FormatSummary(results []Result) string {
	passed, failed, warnings := Summary(results)

	var b strings.Builder

	fmt.Fprintf(&b, "%d passed", passed)

	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}

	if warnings > 0 {
		fmt.Fprintf(&b, ", %d warning(s)", warnings)
	}

	return b.String()
}

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
