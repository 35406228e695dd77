package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/config"
	"forklift-training-service/internal/metrics"
	"forklift-training-service/internal/security"
	transport "forklift-training-service/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the training server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	m := metrics.New()
	svc := buildServices(st, log, app.WithObserver(m))
	if err := app.Seed(ctx, st.users, st.questions, svc.auth, log); err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	limiter := security.NewRateLimiter(cfg.RateLimit.MaxRequests, config.TTLDuration(cfg.RateLimit.Window, time.Minute))
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go limiter.Cleanup(stopCleanup)

	srv := transport.NewServer(svc.sessions, svc.auth, svc.quiz, svc.scores, svc.admin, log, transport.Options{
		CookieName:     cfg.Session.Cookie,
		SecureCookies:  cfg.Server.SecureCookies,
		SessionTTL:     config.TTLDuration(cfg.Session.TTL, 12*time.Hour),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthLimiter:    limiter,
		Metrics:        m,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting training service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
