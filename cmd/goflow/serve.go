package main

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

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/internal/rate"
	"github.com/MrEthical07/goFlow/internal/server"
	"github.com/MrEthical07/goFlow/jwt"
	"github.com/MrEthical07/goFlow/pkg/log"
	"github.com/MrEthical07/goFlow/transport"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the flow API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, v)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", ":4455", "address to listen on")
	flags.String("provider-url", "", "public API root of the identity provider")
	flags.Bool("embedded-redis", false, "order submissions through an in-process Redis (development only)")
	flags.String("log-level", "info", "debug, info, warn or error")
	_ = v.BindPFlag(keyListen, flags.Lookup("listen"))
	_ = v.BindPFlag(keyProviderURL, flags.Lookup("provider-url"))
	_ = v.BindPFlag(keyGenerationEmbedded, flags.Lookup("embedded-redis"))
	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	return cmd
}

type app struct {
	logger  *slog.Logger
	engine  *goFlow.Engine
	cleanup []func()
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

func serve(ctx context.Context, v *viper.Viper) error {
	logger := newLogger(v.GetString(keyLogLevel))
	slog.SetDefault(logger)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &app{logger: logger}
	defer a.close()

	handler, err := a.build(v)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              v.GetString(keyListen),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("HTTP server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// build assembles the provider client, the engine and the router.
func (a *app) build(v *viper.Viper) (http.Handler, error) {
	cfg, err := engineConfig(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range cfg.Lint() {
		a.logger.Warn("configuration warning", slog.String("code", w.Code), slog.String("message", w.Message))
	}

	providerURL := v.GetString(keyProviderURL)
	if providerURL == "" {
		return nil, errors.New("provider.url is required (--provider-url or GOFLOW_PROVIDER_URL)")
	}
	client, err := transport.New(transport.Config{
		BaseURL:    providerURL,
		Timeout:    v.GetDuration(keyProviderTimeout),
		MaxRetries: v.GetInt(keyProviderMaxRetries),
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}

	b := goFlow.New().
		WithConfig(cfg).
		WithProvider(client).
		WithLogger(a.logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goFlow.NewSlogSink(a.logger.With(slog.String("component", "audit"))))
	}
	var rdb redis.UniversalClient
	if cfg.Generation.Distributed || v.GetBool(keyThrottleEnabled) {
		if rdb, err = a.redis(v); err != nil {
			return nil, err
		}
	}
	if cfg.Generation.Distributed {
		b = b.WithRedis(rdb)
	}

	a.engine, err = b.Build()
	if err != nil {
		return nil, err
	}

	var verifier *jwt.Verifier
	jcfg, ok, err := verifierConfig(v)
	if err != nil {
		return nil, err
	}
	if ok {
		if verifier, err = jwt.NewVerifier(jcfg); err != nil {
			return nil, fmt.Errorf("session verifier: %w", err)
		}
	}

	var limiter *rate.Limiter
	if v.GetBool(keyThrottleEnabled) {
		limiter = rate.New(rdb, rate.Config{
			MaxSubmissions: v.GetInt(keyThrottleMax),
			Window:         v.GetDuration(keyThrottleWindow),
			Prefix:         cfg.Generation.RedisPrefix + ":rl",
		})
	}

	srv, err := server.NewServer(server.Config{
		Engine:        a.engine,
		Verifier:      verifier,
		SessionCookie: v.GetString(keySessionCookie),
		Limiter:       limiter,
		Logger:        a.logger,
		Version:       Version,
	})
	if err != nil {
		return nil, err
	}
	return srv.SetupRoutes(), nil
}

// redis connects to the configured Redis, or starts an in-process one when
// embedded_redis is set.
func (a *app) redis(v *viper.Viper) (redis.UniversalClient, error) {
	addr := v.GetString(keyGenerationRedisAddr)
	if v.GetBool(keyGenerationEmbedded) {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		a.cleanup = append(a.cleanup, mr.Close)
		addr = mr.Addr()
		a.logger.Warn("using embedded redis; generation markers are not shared", slog.String("addr", addr))
	}
	if addr == "" {
		return nil, errors.New("generation.redis_addr is required for distributed ordering and throttling")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	a.cleanup = append(a.cleanup, func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn("redis unreachable; submissions fall back to local ordering", log.Error(err))
	}
	return client, nil
}
