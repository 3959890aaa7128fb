package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shouni/gemini-promo-kit/pkg/promotion"
	"github.com/shouni/gemini-promo-kit/pkg/server"
	"github.com/shouni/gemini-promo-kit/pkg/supabase"
)

const shutdownTimeout = 10 * time.Second

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Examples:
  promo-kit serve
  promo-kit serve --addr :8080 --config promo-kit.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config and PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, cleanup, err := buildPipeline(ctx, cfg)
	defer cleanup()
	if err != nil {
		return exitWithCode(ExitConfig, err)
	}

	opts := []server.Option{server.WithDebug(cfg.Debug)}
	if cfg.Database.DSN != "" {
		store, err := promotion.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Debug)
		if err != nil {
			return exitWithCode(ExitConfig, err)
		}
		opts = append(opts, server.WithPromotionStore(store))
	} else {
		log.Warn("database DSN is not set, promotion routes are disabled")
	}
	if cfg.Supabase.URL != "" {
		opts = append(opts, server.WithSQLExecutor(supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, nil)))
	}

	listenAddr := cfg.Addr
	if addr != "" {
		listenAddr = addr
	}
	l, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return exitWithCode(ExitConfig, err)
	}

	srv := &http.Server{
		Handler:           server.New(pipeline, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server listening at %s", l.Addr())
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
