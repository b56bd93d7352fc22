package cmd

import (
	"testing"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/spf13/pflag"
)

func TestRunFlagsAvoidViewerKeys(t *testing.T) {
	key := config.Default().Viewer.DiagnosticsKey
	if f := runCmd().Flags().Lookup("duration"); f == nil || f.Shorthand != "t" {
		t.Fatalf("duration flag shorthand = %+v, want t", f)
	}
	runCmd().Flags().VisitAll(func(f *pflag.Flag) {
		if f.Shorthand == key {
			t.Errorf("flag --%s uses -%s, the diagnostics key", f.Name, key)
		}
	})
}
