package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pysugar/codex-accounts/internal/api"
	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *GlobalFlags) *cobra.Command {
	var (
		addr            string
		refreshInterval time.Duration
		shutdownTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.API.Addr
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(e.svc, e.metrics, e.cfg.API.AdminPassword),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if refreshInterval > 0 {
				go refreshLoop(ctx, e.svc, refreshInterval)
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("🚀 codex-accounts API listening on http://%s", addr)
				if e.cfg.API.AdminPassword != "" {
					log.Printf("🔒 Admin auth enabled")
				}
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("🛑 Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("⚠️ API shutdown: %v", err)
			}
			if err := e.svc.Listener().Close(); err != nil {
				log.Printf("⚠️ Callback listener shutdown: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8765)")
	cmd.Flags().DurationVar(&refreshInterval, "refresh-interval", 0, "Refresh all quotas periodically (0 disables)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}

// refreshLoop refreshes every account's quota until ctx is done.
func refreshLoop(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.RefreshAllQuotas(); err != nil {
				log.Printf("⚠️ [Quota] Periodic refresh failed: %v", err)
			}
		}
	}
}
