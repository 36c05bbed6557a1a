// Package buildinfo stores build-time metadata shared by koi and koictl.
package buildinfo

import "runtime/debug"

// Set via ldflags during build:
//
//	-X github.com/killuox/koi-launcher/internal/buildinfo.Version=1.2.3
//	-X github.com/killuox/koi-launcher/internal/buildinfo.Commit=abc1234
//	-X github.com/killuox/koi-launcher/internal/buildinfo.Date=2026-01-02T15:04:05Z
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is the build metadata reported by `koictl version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"goVersion"`
}

// Current returns the build metadata of the running binary. When Commit was
// not stamped it falls back to the VCS revision recorded by the toolchain.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion

		if info.Commit == "" {
			for _, setting := range bi.Settings {
				switch setting.Key {
				case "vcs.revision":
					info.Commit = shortRevision(setting.Value)
				case "vcs.time":
					if info.Date == "" {
						info.Date = setting.Value
					}
				}
			}
		}
	}

	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}

	return rev
}
