package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/jacentio/shelf/httpapi"
	"github.com/jacentio/shelf/store"
)

type Config struct {
	Port          string `env:"SHELF_PORT" env-default:"8080"`
	Region        string `env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint      string `env:"SHELF_DYNAMODB_ENDPOINT" env-default:""`
	ItemsTable    string `env:"SHELF_ITEMS_TABLE" env-default:"shelf_items"`
	CountersTable string `env:"SHELF_COUNTERS_TABLE" env-default:"shelf_counters"`
	TypeIndex     string `env:"SHELF_TYPE_INDEX" env-default:"type-index"`
	AllowedOwners string `env:"SHELF_ALLOWED_OWNERS" env-default:"organization:1"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err)
		os.Exit(1)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := store.New(client, store.Config{
		ItemsTable:    cfg.ItemsTable,
		CountersTable: cfg.CountersTable,
		TypeIndex:     cfg.TypeIndex,
	})
	auth := httpapi.NewAllowList(strings.Split(cfg.AllowedOwners, ","))
	handler := httpapi.New(s, auth, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpapi.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Mount("/", handler.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("shelf server starting", "port", cfg.Port, "itemsTable", cfg.ItemsTable)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
}
