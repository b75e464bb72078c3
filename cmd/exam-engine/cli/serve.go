package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/exam-engine/internal/clients/paperapi"
	"github.com/SAP-F-2025/exam-engine/internal/config"
	"github.com/SAP-F-2025/exam-engine/internal/handlers"
	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server hosting exam sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)
	slog.SetDefault(slogger)

	snapshots, closeStore, err := openSnapshotStore(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	client, err := paperapi.New(paperapi.Config{
		BaseURL: cfg.PaperAPIURL,
		Token:   cfg.PaperAPIToken,
		Timeout: cfg.PaperAPITimeout,
	})
	if err != nil {
		return err
	}

	v := validator.New()
	sessions := services.NewSessionService(services.SessionDeps{
		Provider:      client,
		Submitter:     client,
		Snapshots:     snapshots,
		Publisher:     publisher,
		Validator:     v,
		Logger:        slogger,
		SubmitTimeout: cfg.SubmitTimeout,
	}, cfg.SessionIdleTTL)
	defer sessions.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewHandlerManager(sessions, v, logger).NewRouter()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slogger.Info("HTTP server listening", "addr", srv.Addr, "snapshot_store", cfg.SnapshotStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.SessionIdleTTL > 0 {
		g.Go(func() error {
			sessions.RunJanitor(gctx, janitorInterval(cfg.SessionIdleTTL))
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// janitorInterval sweeps a few times per TTL, bounded to [1s, 1m].
func janitorInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
