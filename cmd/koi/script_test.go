package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/killuox/koi-launcher/internal/platform"
	"github.com/killuox/koi-launcher/internal/testutil"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"koi": func() { os.Exit(run(os.Args[1:])) },
	})
}

func TestScripts(t *testing.T) {
	testutil.SkipIfNoShell(t)

	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("KOI_LAUNCHER_INSTALL_DIR", env.WorkDir)
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_STATE_HOME", filepath.Join(env.WorkDir, ".state"))
			env.Setenv("KOI_BINARY", platform.BinaryPath(env.WorkDir, platform.Current()))

			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"install-koi": cmdInstallKoi,
		},
	})
}

// cmdInstallKoi installs the fake koi program for the host platform into
// the script's work directory, or the script file given as the argument.
func cmdInstallKoi(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! install-koi")
	}

	script := testutil.FakeKoiScript
	if len(args) == 1 {
		script = ts.ReadFile(args[0])
	} else if len(args) > 1 {
		ts.Fatalf("usage: install-koi [script]")
	}

	path := ts.Getenv("KOI_BINARY")

	ts.Check(os.MkdirAll(filepath.Dir(path), 0o755))
	ts.Check(os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // G306: fake koi must be executable
}
