package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/app"
	"golang.org/x/sync/errgroup"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the finalization engine on a recurring schedule",
		Long: `Run the finalization engine every week at schedule.weekday / schedule.at
(Sunday 23:59 UTC by default) or every --interval. A tick is skipped while the
previous run is still in progress.

With --metrics-addr the engine metrics are served on /metrics. On SIGINT or
SIGTERM no further run starts; the command exits once the in-flight run has
finished or hit --run-timeout, whichever comes first.`,
		Example: `  # Weekly, Sunday 23:59 UTC
  weekvote schedule --metrics-addr :9464

  # Every hour, e.g. on a testnet
  weekvote schedule --interval 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSchedule(ctx, app)
		},
	}

	cmd.Flags().Duration("interval", 0, "Fire every interval instead of weekly")
	cmd.Flags().String("metrics-addr", "", "Address to serve /metrics on (disabled when empty)")
	cmd.Flags().Int("workers", 4, "Proposals and payouts processed concurrently")
	cmd.Flags().Duration("run-timeout", 30*time.Minute, "Upper bound of one engine run")

	return cmd
}

func runSchedule(ctx context.Context, a *app.App) error {
	g, ctx := errgroup.WithContext(ctx)

	if addr := a.Config.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.Gatherer, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Bind first so a port conflict fails the command instead of a goroutine
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
		}
		a.Log.Info("metrics listener started", "addr", ln.Addr().String())

		g.Go(func() error {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.Scheduler.Run(ctx)
	})

	return g.Wait()
}
