package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/serve"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a stored geometry over the three read-only endpoints",
	}

	cmd.AddCommand(
		serveStartCmd(),
		serveStopCmd(),
		serveStatusCmd(),
		serveLogsCmd(),
	)
	return cmd
}

func serveStartCmd() *cobra.Command {
	var (
		addr       string
		name       string
		kind       string
		dbPath     string
		background bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the geometry server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if running, pid := serve.IsRunning(); running {
				fmt.Printf("  Server already running (PID %d)\n", pid)
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Store.Addr
			}
			if kind != "" {
				cfg.Store.Kind = kind
			}
			if dbPath != "" {
				cfg.Store.DBPath = dbPath
			}

			if background {
				exe, _ := os.Executable()
				child := exec.Command(exe, "serve", "start", "--addr", addr, "--name", name,
					"--store", cfg.Store.Kind, "--db", cfg.Store.DBPath)
				if cfgFile != "" {
					child.Args = append(child.Args, "--config", cfgFile)
				}
				child.Stdout, child.Stderr = nil, nil
				detach(child)
				if err := child.Start(); err != nil {
					return fmt.Errorf("start server: %w", err)
				}
				ui.Good.Printf("  %s Server started on %s (PID %d)\n", ui.StatusIcon(true), addr, child.Process.Pid)
				fmt.Printf("\n  Point a session at it:\n    lattice run --geometry fetch --base-url http://localhost%s\n", addr)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(st)

			srv := serve.New(serve.Config{
				Addr:    addr,
				Name:    name,
				LogFile: serve.LogPath(),
				Verbose: verbose,
			}, st)

			grid := geometry.BuildGrid(cfg.Viewport.Width, cfg.Viewport.Height, cfg.Geometry)
			seeded, err := srv.Seed(ctx, grid)
			if err != nil {
				return err
			}
			if seeded {
				ui.Logf("seeded %q with a %dx%d grid", name, cfg.Geometry.Rows, cfg.Geometry.Cols)
			}

			if err := serve.WritePid(); err != nil {
				return fmt.Errorf("write pid: %w", err)
			}
			defer serve.RemovePid()

			ui.Banner("geometry server")
			fmt.Printf("  Serving %s from the %s store on http://localhost%s\n", ui.Brand.Sprint(name), cfg.Store.Kind, addr)
			for _, p := range []string{geometry.PathNodes, geometry.PathStructuralEdges, geometry.PathGridState} {
				fmt.Printf("    %s\n", ui.Subtle.Sprint(p))
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&name, "name", "default", "Stored geometry to serve")
	cmd.Flags().StringVar(&kind, "store", "", "Store backend: memory or sqlite")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	cmd.Flags().BoolVarP(&background, "bg", "b", false, "Run in background")
	_ = cmd.RegisterFlagCompletionFunc("name", geometryNameCompletion)
	return cmd
}

func serveStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the geometry server",
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid := serve.IsRunning()
			if !running {
				fmt.Println("  Server is not running")
				return nil
			}

			proc, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find process %d: %w", pid, err)
			}
			if err := terminate(proc); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}

			serve.RemovePid()
			ui.Good.Printf("  %s Server stopped (PID %d)\n", ui.StatusIcon(true), pid)
			return nil
		},
	}
}

func serveStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check geometry server status",
		Run: func(cmd *cobra.Command, args []string) {
			if running, pid := serve.IsRunning(); running {
				ui.Good.Printf("  %s Server running (PID %d)\n", ui.StatusIcon(true), pid)
				return
			}
			fmt.Println("  Server is not running")
			fmt.Println("  Start: lattice serve start")
		},
	}
}

func serveLogsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent server request logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.Banner("server logs")

			logs, err := serve.ReadLogs(serve.LogPath(), count)
			if err != nil {
				return fmt.Errorf("read logs: %w", err)
			}
			if len(logs) == 0 {
				fmt.Println("  No requests logged yet.")
				return nil
			}

			headers := []string{"Time", "Method", "Path", "Status", "Bytes", "Duration"}
			var rows [][]string
			for _, entry := range logs {
				rows = append(rows, []string{
					entry.Timestamp.Format("15:04:05"),
					entry.Method,
					entry.Path,
					fmt.Sprintf("%s %d", ui.StatusIcon(entry.Status < 400), entry.Status),
					strconv.Itoa(entry.Bytes),
					fmt.Sprintf("%.1fms", entry.Duration),
				})
			}
			ui.Table(headers, rows)
			fmt.Printf("\n  %d entries\n", len(logs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 50, "Number of log entries to show")
	return cmd
}
