package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/gatehouse/pkg/samlapp"
)

var (
	dbURL        = flag.String("db-url", getEnv("GATEHOUSE_DATABASE_URL", "postgres://localhost/gatehouse?sslmode=disable"), "PostgreSQL connection URL")
	schedule     = flag.String("schedule", "30 2 * * *", "Cron schedule for rotation runs (default: 02:30 UTC)")
	windowDays   = flag.Int("window-days", 30, "Rotate secrets expiring within this many days")
	lifespanDays = flag.Int("lifespan-days", samlapp.DefaultCertificateLifespanDays, "Certificate lifespan for rotated secrets")
	runOnce      = flag.Bool("run-once", false, "Run a single rotation pass and exit")
	logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := setupLogger(*logLevel)

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	rotator := samlapp.NewRotator(
		samlapp.NewStorage(db, nil),
		nil,
		nil,
		time.Duration(*windowDays)*24*time.Hour,
		*lifespanDays,
	)

	if *runOnce {
		rotated, err := rotator.Run(context.Background())
		if err != nil {
			logger.Fatalf("Rotation failed after %d secrets: %v", rotated, err)
		}
		logger.Infof("Rotation completed, %d secrets rotated", rotated)
		return
	}

	c := cron.New()
	_, err = c.AddFunc(*schedule, func() {
		logger.Info("Starting scheduled rotation run")
		rotated, err := rotator.Run(context.Background())
		if err != nil {
			logger.Errorf("Rotation failed after %d secrets: %v", rotated, err)
			return
		}
		logger.Infof("Rotation completed, %d secrets rotated", rotated)
	})
	if err != nil {
		logger.Fatalf("Failed to schedule rotation: %v", err)
	}

	c.Start()
	logger.Infof("Gatehouse secret rotator started, schedule: %s", *schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down gracefully...")

	ctx := c.Stop()
	<-ctx.Done()
	logger.Info("Rotator stopped")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
