package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	grpcadapter "github.com/makifarslan/Mini-Farm/internal/adapters/grpc"
	"github.com/makifarslan/Mini-Farm/internal/adapters/metrics"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/simulation"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		duration       time.Duration
		statusInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the farm in real time",
		Long: `Load the latest save with offline catch-up, then run every factory in
real time until interrupted (Ctrl+C) or until --for elapses. The farm is
saved on exit when simulation.save_on_quit is set.

While it runs, the other commands (order, cancel, collect, save, status,
resources) are sent to it over simulation.socket_path instead of loading
the save themselves.

Examples:
  minifarm run
  minifarm run --for 10m --status-interval 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pf := pidfile.New(cfg.Simulation.PIDFile)
			if err := pf.Acquire(); err != nil {
				return err
			}
			defer pf.Release()

			app, err := NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			app.Logger = app.Logger.With().Str("run_id", uuid.New().String()).Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			ctx = app.Context(ctx)

			// nothing else touches the farm until the loop starts
			report, err := app.Coordinator.Load(ctx)
			if err != nil {
				return err
			}
			printLoadReport(cmd.OutOrStdout(), app, report)

			scheduler := simulation.NewScheduler(app.Registry, app.Coordinator, nil, simulation.Config{
				TickInterval:     cfg.Simulation.TickInterval,
				AutosaveInterval: cfg.Simulation.AutosaveInterval,
				SaveOnQuit:       cfg.Simulation.SaveOnQuit,
			})
			med, err := app.Mediator(scheduler)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			daemon, err := grpcadapter.NewDaemonServer(med, cfg.Simulation.SocketPath, app.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Accepting commands on %s\n", daemon.Addr())

			if cfg.Metrics.Enabled {
				srv := serveMetrics(ctx, app, cfg.Metrics.Address(), cfg.Metrics.Path)
				defer srv.Close()
			}

			// both goroutines end with ctx and are joined before the final
			// write to out
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := daemon.Start(ctx); err != nil {
					app.Logger.Error().Err(err).Msg("Daemon failed")
				}
			}()
			if statusInterval > 0 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					reportStatus(ctx, scheduler, med, out, statusInterval)
				}()
			}

			runErr := scheduler.Run(ctx)
			wg.Wait()
			if runErr != nil {
				return runErr
			}
			fmt.Fprintln(out, "Farm stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().DurationVar(&statusInterval, "status-interval", 0, "Print the factory table at this interval")

	return cmd
}

func serveMetrics(ctx context.Context, app *App, addr, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		app.Logger.Info().Str("address", addr).Str("path", path).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}

// reportStatus prints the factory table through the mediator, which hands
// the query to the simulation loop
func reportStatus(ctx context.Context, scheduler *simulation.Scheduler, med mediator.Mediator, out io.Writer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduler.Done():
			return
		case <-ticker.C:
			resp, err := med.Send(ctx, &prodTypes.ListFactoriesQuery{})
			if err != nil {
				continue
			}
			fmt.Fprintln(out)
			printFactories(out, resp.(*prodTypes.ListFactoriesResponse).Factories)
		}
	}
}
