package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/codey22/notespace/internal/db"
	httpx "github.com/codey22/notespace/internal/http"
	"github.com/codey22/notespace/internal/jobs"
	"github.com/codey22/notespace/internal/metrics"
	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiry reaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, gdb, err := openStore(v)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close(gdb)
				_ = log.Sync()
			}()

			m, err := metrics.New()
			if err != nil {
				return err
			}
			tokens := session.NewTokens(cfg.SessionSecret)
			r := httpx.NewRouter(cfg, gdb, tokens, m, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reaper := &jobs.Reaper{
				ID:       "reaper-1",
				Notes:    &note.Service{DB: gdb},
				TTL:      cfg.NoteTTL,
				Interval: cfg.ReapInterval,
				Log:      log,
				OnReaped: m.NotesReaped,
			}
			go reaper.Run(ctx)

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           r,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info(ctx, "listening", "addr", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				stop()
				return err
			}

			log.Info(context.Background(), "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (HTTP_ADDR)")
	_ = v.BindPFlag("HTTP_ADDR", cmd.Flags().Lookup("addr"))
	return cmd
}
