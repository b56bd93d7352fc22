package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/semantic"
	"github.com/msalah0e/lattice/internal/sim"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/msalah0e/lattice/internal/viewer"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		headless bool
		duration time.Duration
		seed     int64
		mode     string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the lattice viewer",
		Long: `Open the interactive lattice viewer in the terminal.

Move the pointer with the mouse or arrow keys, press the diagnostics key
(default "d") for the overlay and q to quit. Without a terminal, or with
--headless, the simulation runs without drawing and prints diagnostics
when it stops.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if mode != "" {
				cfg.Geometry.Mode = mode
			}
			if baseURL != "" {
				cfg.Geometry.BaseURL = baseURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, h := cfg.Viewport.Width, cfg.Viewport.Height
			geom, report := geometry.Load(ctx, cfg, w, h)
			logLoadReport(report)
			s := sim.New(cfg, geom, w, h)

			if headless || !isatty.IsTerminal(os.Stdout.Fd()) {
				return runHeadless(ctx, s, cfg, duration)
			}
			if err := viewer.Run(s, cfg.Viewer, cfg.SemanticInterval()); err != nil {
				return fmt.Errorf("viewer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Step the simulation without drawing")
	cmd.Flags().DurationVarP(&duration, "duration", "t", 0, "Stop after this long (headless only, 0 runs until interrupted)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Session seed (0 derives one from the session id)")
	cmd.Flags().StringVar(&mode, "geometry", "", "Geometry source: procedural or fetch")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Geometry service base URL for fetch mode")
	return cmd
}

func logLoadReport(r geometry.LoadReport) {
	if f := r.Fetched; f != nil {
		logResult(geometry.PathNodes, f.Nodes.OK, f.Nodes.Err)
		logResult(geometry.PathStructuralEdges, f.Edges.OK, f.Edges.Err)
		logResult(geometry.PathGridState, f.GridState.OK, f.GridState.Err)
	}
	if r.FellBack {
		fmt.Fprintf(os.Stderr, "  %s no nodes fetched, using the procedural grid\n", ui.WarnIcon())
	}
	ui.Logf("geometry %s: %d nodes, %d edges", r.Mode, r.NodeCount, r.EdgeCount)
}

func logResult(path string, ok bool, err error) {
	if ok {
		ui.Logf("%s %s", ui.StatusIcon(true), path)
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s: %v\n", ui.WarnIcon(), path, err)
}

func runHeadless(ctx context.Context, s *sim.Simulation, cfg *config.Config, duration time.Duration) error {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	loop := sim.NewLoop(s, cfg.Viewer.FPS, cfg.SemanticInterval())
	loop.OnCycle = func(edges []semantic.Edge) {
		ui.Logf("semantic cycle: %d edges", len(edges))
	}

	ui.Banner(fmt.Sprintf("headless session %s", s.Session.ID))
	start := time.Now()
	if err := loop.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("  %d frames in %s\n\n", s.Frames(), time.Since(start).Round(time.Millisecond))
	for _, line := range s.Diagnostics().Lines() {
		fmt.Println("  " + line)
	}
	return nil
}
