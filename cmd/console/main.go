package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/console"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/dto"
	applogger "github.com/emanuel-malungo/jomorais/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	// 1. configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateConsole(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log, "jomorais-console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting console",
		zap.Int("port", cfg.Console.Port),
		zap.String("api", cfg.Console.APIBaseURL),
	)

	// 3. API client; a static token wins over the service account
	api := client.New(cfg.Console.APIBaseURL, cfg.Console.RequestTimeout, client.WithLogger(logger))
	operator := ""
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Console.APIToken != "" {
		api.SetToken(cfg.Console.APIToken)
	} else {
		tok, err := login(ctx, api, cfg)
		if err != nil {
			logger.Fatal("console login failed", zap.Error(err))
		}
		operator = tok.User.Nome
		go keepSession(ctx, api, cfg, time.Duration(tok.ExpiresIn)*time.Second, logger)
	}

	// 4. institution identity for documents
	logo, err := document.LoadLogo(cfg.Documents.LogoPath)
	if err != nil {
		logger.Warn("logo unavailable, documents print without it", zap.Error(err))
	}
	inst := document.Institution{
		Name:     cfg.Documents.InstitutionName,
		NIF:      cfg.Documents.NIF,
		Address:  cfg.Documents.Address,
		Phone:    cfg.Documents.Phone,
		Email:    cfg.Documents.Email,
		Currency: cfg.Documents.Currency,
		Logo:     logo,
	}

	app, err := console.New(cfg, api, inst, logger, console.WithOperator(operator))
	if err != nil {
		logger.Fatal("console setup failed", zap.Error(err))
	}

	// 5. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Console.Port),
		Handler:      app.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Export.SAFTTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("console listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("console stopped")
}

func login(ctx context.Context, api *client.Client, cfg *config.Config) (*dto.TokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return api.Login(ctx, cfg.Console.APIEmail, cfg.Console.APIPassword)
}

// keepSession logs in again at half the token lifetime so the console never
// sends an expired token.
func keepSession(ctx context.Context, api *client.Client, cfg *config.Config, ttl time.Duration, logger *zap.Logger) {
	every := ttl / 2
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tok, err := login(ctx, api, cfg)
			if err != nil {
				logger.Warn("session refresh failed", zap.Error(err))
				continue
			}
			if d := time.Duration(tok.ExpiresIn) * time.Second / 2; d >= time.Minute && d != every {
				every = d
				ticker.Reset(every)
			}
		}
	}
}
