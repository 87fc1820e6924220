package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	grpcadapter "github.com/makifarslan/Mini-Farm/internal/adapters/grpc"
	"github.com/makifarslan/Mini-Farm/internal/application/common"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/savegame"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/config"
	"github.com/makifarslan/Mini-Farm/internal/infrastructure/pidfile"
)

// requestSender is the part of the mediator a command needs. It is either
// an in-process mediator over a freshly loaded farm or the daemon client of
// a farm that is already running.
type requestSender interface {
	Send(ctx context.Context, request mediator.Request) (mediator.Response, error)
}

// session is the farm a one-shot command acts on
type session struct {
	mediator requestSender
	out      io.Writer
}

// remoteTimeout bounds a one-shot command sent to a running farm
const remoteTimeout = 10 * time.Second

// withGame runs fn against the farm. While a simulation holds the pid file
// the command goes to it over the daemon socket; otherwise the latest save
// is loaded with offline catch-up and, when persist is set, saved again
// afterwards.
func withGame(cmd *cobra.Command, persist bool, fn func(ctx context.Context, s *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if pidfile.New(cfg.Simulation.PIDFile).IsActive() {
		return withRunningFarm(cmd, cfg, persist, fn)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	med, err := app.Mediator(common.InlineExecutor{})
	if err != nil {
		return err
	}

	ctx := app.Context(cmd.Context())
	s := &session{mediator: med, out: cmd.OutOrStdout()}

	resp, err := med.Send(ctx, &savegame.LoadGameCommand{})
	if err != nil {
		return err
	}
	app.Registry.ResumeAll()
	if verbose {
		printLoadReport(s.out, app, resp.(*savegame.LoadGameResponse).Report)
	}

	if err := fn(ctx, s); err != nil {
		return err
	}
	if !persist {
		return nil
	}

	app.Registry.ShutdownAll()
	if _, err := med.Send(ctx, &savegame.SaveGameCommand{}); err != nil {
		return err
	}
	return nil
}

// withRunningFarm sends fn's requests to the live simulation. That process
// owns the save, so persisting means asking it to save now rather than
// writing a snapshot it would overwrite on exit.
func withRunningFarm(cmd *cobra.Command, cfg *config.Config, persist bool, fn func(ctx context.Context, s *session) error) error {
	client, err := grpcadapter.NewDaemonClientGRPC(cfg.Simulation.SocketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	s := &session{mediator: client, out: cmd.OutOrStdout()}
	if verbose {
		fmt.Fprintf(s.out, "Farm is running, sending to %s\n", cfg.Simulation.SocketPath)
	}

	if err := fn(ctx, s); err != nil {
		return fmt.Errorf("running farm: %w", err)
	}
	if !persist {
		return nil
	}
	if _, err := client.Send(ctx, &savegame.SaveGameCommand{}); err != nil {
		return fmt.Errorf("running farm: %w", err)
	}
	return nil
}

func printLoadReport(out io.Writer, app *App, report *savegame.LoadReport) {
	if report == nil || !report.Found {
		fmt.Fprintln(out, "No save found, starting a new farm")
		return
	}

	fmt.Fprintf(out, "Loaded save from %s (%.0fs offline)\n",
		report.SavedAt.Local().Format("2006-01-02 15:04:05"), report.ElapsedSeconds)

	var produced []string
	for _, id := range report.Restored {
		if n := report.Produced[id]; n > 0 {
			name := fmt.Sprintf("factory %d", id)
			if f, ok := app.Registry.Lookup(id); ok && f.Name() != "" {
				name = f.Name()
			}
			produced = append(produced, fmt.Sprintf("%s +%d", name, n))
		}
	}
	sort.Strings(produced)
	if len(produced) > 0 {
		fmt.Fprintf(out, "Produced while away: %s\n", strings.Join(produced, ", "))
	}
	duplicates := make(map[production.FactoryID]bool, len(report.Duplicates))
	for _, id := range report.Duplicates {
		duplicates[id] = true
		fmt.Fprintf(out, "Skipped repeated entry for factory %d in save\n", id)
	}
	for _, id := range report.Skipped {
		if !duplicates[id] {
			fmt.Fprintf(out, "Skipped unknown factory %d from save\n", id)
		}
	}
	for _, id := range report.Restored {
		if n := report.Refunded[id]; n > 0 {
			fmt.Fprintf(out, "Refunded %d order(s) at factory %d that no longer fit\n", n, id)
		}
	}
}
