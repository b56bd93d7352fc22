package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/msalah0e/lattice/internal/bench"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/spf13/cobra"
)

func benchCmd() *cobra.Command {
	var (
		seeds       string
		frames      int
		fps         int
		concurrency int
		plot        bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Step several seeded simulations headlessly and compare them",
		Example: `  lattice bench
  lattice bench --seeds 1,2,3,4 --frames 3600 --plot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			list, err := parseSeeds(seeds)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("--fps must be positive")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui.Banner("bench")
			fmt.Printf("  Seeds:  %s\n", ui.Brand.Sprint(seeds))
			fmt.Printf("  Frames: %d at %dfps, semantic cycle every %d frames\n\n", frames, fps, bench.CycleEvery)

			rep, err := bench.Execute(ctx, cfg, bench.Options{
				Seeds:       list,
				Frames:      frames,
				FrameDT:     time.Second / time.Duration(fps),
				Concurrency: concurrency,
				Progress:    os.Stdout,
			})
			if err != nil {
				return err
			}
			printBenchReport(rep, plot)
			return nil
		},
	}

	cmd.Flags().StringVar(&seeds, "seeds", "1,2,3,4", "Comma-separated session seeds")
	cmd.Flags().IntVarP(&frames, "frames", "f", 1800, "Frames per simulation")
	cmd.Flags().IntVar(&fps, "fps", 60, "Simulated frame rate")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "Simulations stepped at once")
	cmd.Flags().BoolVar(&plot, "plot", false, "Plot the mean force trace of the first seed")
	return cmd
}

func parseSeeds(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", part)
		}
		if v == 0 {
			return nil, fmt.Errorf("seed 0 is reserved for derived seeds")
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no seeds given")
	}
	return out, nil
}

func printBenchReport(rep bench.Report, plot bool) {
	fmt.Println()
	headers := []string{"Seed", "Avg force", "Peak", "Semantic", "Transitions", "Event", "Time", "Status"}
	var rows [][]string
	failed := 0
	for _, r := range rep.Runs {
		status := ui.StatusIcon(true) + " ok"
		if r.Err != nil {
			status = ui.StatusIcon(false) + " " + r.Err.Error()
			failed++
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.Seed, 10),
			fmt.Sprintf("%.3f", r.AvgForce),
			fmt.Sprintf("%.3f", r.PeakForce),
			strconv.Itoa(r.SemanticEdges),
			strconv.Itoa(r.Transitions),
			r.FinalEvent.String(),
			fmt.Sprintf("%.2fs", r.Elapsed.Seconds()),
			status,
		})
	}
	ui.Table(headers, rows)

	fmt.Printf("\n  Wall %s, process CPU %.0f%%", rep.Wall.Round(time.Millisecond), rep.CPUPercent())
	if rep.CPUCores > 0 {
		fmt.Printf(" across %d cores", rep.CPUCores)
	}
	fmt.Println()
	if failed > 0 {
		ui.Warn.Printf("  %d of %d runs failed\n", failed, len(rep.Runs))
	}

	if plot && len(rep.Runs) > 0 && rep.Runs[0].Err == nil {
		fmt.Println()
		fmt.Println(bench.Plot(rep.Runs[0], 60, 8))
	}
}
