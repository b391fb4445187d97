package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/idtap/swara/internal/config"
	"github.com/idtap/swara/internal/logger"
	"github.com/idtap/swara/version"
	"github.com/joho/godotenv"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not load .env: %v", err)
	}
	cfg = config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "swara@" + version.VersionOrHash,
			Debug:       !cfg.IsProduction(),
		}); err != nil {
			log.Printf("failed to initialize sentry: %v", err)
		}
	}
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errFailed) {
		fmt.Fprintln(os.Stderr, err)
	}
	sentry.Flush(sentryFlushTimeout)
	if err != nil {
		os.Exit(1)
	}
}
