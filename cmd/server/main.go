// Command server starts the vidgate playback gateway HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"vidgate/internal/api"
	"vidgate/internal/mux"
	"vidgate/internal/observability/logging"
	"vidgate/internal/observability/metrics"
	"vidgate/internal/playback"
	"vidgate/internal/server"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	adminToken := flag.String("admin-token", "", "shared secret guarding the delete endpoints (plaintext or pbkdf2 hash)")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	corsOrigins := flag.String("cors-origins", "", "comma separated list of origins allowed to call the API")
	globalRPS := flag.Float64("rate-global-rps", 0, "global request rate limit in requests per second")
	globalBurst := flag.Int("rate-global-burst", 0, "global rate limit burst allowance")
	adminLimit := flag.Int("rate-admin-limit", 0, "maximum admin delete requests per window for a single IP")
	adminWindow := flag.Duration("rate-admin-window", 0, "window for the per-IP admin delete limit")
	redisAddr := flag.String("rate-redis-addr", "", "Redis address for shared rate limit counters")
	redisPassword := flag.String("rate-redis-password", "", "Redis password for the rate limit store")
	redisTimeout := flag.Duration("rate-redis-timeout", 0, "timeout for rate limit store operations")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("VIDGATE_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("VIDGATE_LOG_FORMAT")),
	})

	muxCfg, err := mux.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid platform configuration", "error", err)
		os.Exit(1)
	}

	recorder := metrics.Default()

	httpClient := muxCfg.HTTPClient
	if httpClient == nil && muxCfg.HTTPTimeout > 0 {
		httpClient = &http.Client{Timeout: muxCfg.HTTPTimeout}
	}

	client, err := mux.NewClient(mux.ClientConfig{
		BaseURL:     muxCfg.BaseURL,
		TokenID:     muxCfg.TokenID,
		TokenSecret: muxCfg.TokenSecret,
		HTTPClient:  httpClient,
		Logger:      logging.WithComponent(logger, "mux"),
		Metrics:     recorder,
	})
	if err != nil {
		logger.Error("failed to initialise platform client", "error", err)
		os.Exit(1)
	}

	var signer playback.TokenSigner
	if muxCfg.SigningEnabled() {
		s, err := mux.NewSigner(muxCfg.SigningKeyID, muxCfg.SigningKeySecret, muxCfg.TokenTTL)
		if err != nil {
			logger.Error("failed to initialise playback signer", "error", err)
			os.Exit(1)
		}
		signer = s
	}

	resolver, err := playback.NewResolver(playback.Config{
		Platform: client,
		Signer:   signer,
		Logger:   logging.WithComponent(logger, "playback"),
		Metrics:  recorder,
	})
	if err != nil {
		logger.Error("failed to initialise resolver", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(resolver, client)
	handler.AdminToken = firstNonEmpty(*adminToken, os.Getenv("VIDGATE_ADMIN_TOKEN"))
	handler.UploadCORSOrigin = muxCfg.UploadCORSOrigin
	handler.UploadPolicy = muxCfg.UploadPolicy
	handler.Logger = logging.WithComponent(logger, "api")

	listenAddr := firstNonEmpty(*addr, os.Getenv("VIDGATE_ADDR"), ":8080")

	rateCfg := server.RateLimitConfig{
		GlobalRPS:     resolveFloat(*globalRPS, "VIDGATE_RATE_GLOBAL_RPS"),
		GlobalBurst:   resolveInt(*globalBurst, "VIDGATE_RATE_GLOBAL_BURST"),
		AdminLimit:    resolveInt(*adminLimit, "VIDGATE_RATE_ADMIN_LIMIT"),
		AdminWindow:   resolveDuration(*adminWindow, "VIDGATE_RATE_ADMIN_WINDOW", time.Minute),
		RedisAddr:     firstNonEmpty(*redisAddr, os.Getenv("VIDGATE_RATE_REDIS_ADDR")),
		RedisPassword: firstNonEmpty(*redisPassword, os.Getenv("VIDGATE_RATE_REDIS_PASSWORD")),
		RedisTimeout:  resolveDuration(*redisTimeout, "VIDGATE_RATE_REDIS_TIMEOUT", 2*time.Second),
	}

	srv, err := server.New(handler, server.Config{
		Addr:      listenAddr,
		TLS:       server.TLSConfig{CertFile: firstNonEmpty(*tlsCert, os.Getenv("VIDGATE_TLS_CERT")), KeyFile: firstNonEmpty(*tlsKey, os.Getenv("VIDGATE_TLS_KEY"))},
		RateLimit: rateCfg,
		CORS:      server.CORSConfig{AllowedOrigins: splitAndTrim(firstNonEmpty(*corsOrigins, os.Getenv("VIDGATE_CORS_ORIGINS")))},
		Logger:    logger,
		Metrics:   recorder,
	})
	if err != nil {
		logger.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("vidgate API listening", "addr", listenAddr)
		logger.Info("metrics endpoint available", "path", "/metrics")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func resolveFloat(flagValue float64, envKey string) float64 {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.ParseFloat(strings.TrimSpace(env), 64); err == nil {
			return value
		}
	}
	return 0
}

func resolveInt(flagValue int, envKey string) int {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return 0
}

func resolveDuration(flagValue time.Duration, envKey string, fallback time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := time.ParseDuration(env); err == nil {
			return value
		}
	}
	return fallback
}
