package cmd

import (
	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	cfgFile string
	verbose bool
)

// loadConfig reads --config when given, otherwise the default config file.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Load(), nil
	}
	return config.LoadFile(cfgFile)
}

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "lattice — a force-driven node lattice in the terminal",
	Long: ui.Brand.Sprint(ui.Mark+" lattice") + " — a living node lattice driven by a moving force field\n" +
		ui.Subtle.Sprint("Run the viewer, bench seeds headlessly, or serve geometry over HTTP"),
	Version:       version + " " + ui.Mark,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Verbose = verbose
	},
}

func init() {
	rootCmd.SetVersionTemplate("lattice {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print diagnostic lines to stderr")

	rootCmd.AddCommand(
		runCmd(),
		benchCmd(),
		serveCmd(),
		geometryCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.Fatal("%v", err)
	}
	return err
}
