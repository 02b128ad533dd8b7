package commands

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/fetcher"
	"github.com/backyonatan-alt/coronastats/internal/pipeline"
	"github.com/backyonatan-alt/coronastats/internal/scheduler"
	"github.com/backyonatan-alt/coronastats/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refreshes the counters periodically and serves them over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, ln)
	},
}

// serve runs the refresh scheduler and the HTTP server on ln until ctx is
// done, then shuts both down.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	c := cache.New()
	f := fetcher.New(cfg)
	p := pipeline.New(c, f)

	sched := scheduler.New(cfg.RefreshInterval, cfg.StartupDelay,
		scheduler.Task{Name: "global", Run: p.RefreshGlobal},
		scheduler.Task{Name: "countries", Run: p.RefreshCountries},
	)
	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	schedDone := make(chan struct{})
	go func() {
		sched.Start(schedCtx)
		close(schedDone)
	}()

	srv := server.New(cfg, c)
	httpServer := &http.Server{
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", ln.Addr().String())
		serveErr <- httpServer.Serve(ln)
	}()

	var err error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-serveErr:
		slog.Error("server error", "error", err)
	}

	sched.Stop()
	cancelSched()
	<-schedDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("server shutdown error", "error", shutdownErr)
	}

	slog.Info("shutdown complete")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
