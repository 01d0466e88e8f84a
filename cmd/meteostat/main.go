package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/guiajf/meteostat/internal/api/http"
	"github.com/guiajf/meteostat/internal/cache"
	"github.com/guiajf/meteostat/internal/config"
	"github.com/guiajf/meteostat/internal/geo"
	"github.com/guiajf/meteostat/internal/scheduler"
	"github.com/guiajf/meteostat/internal/store"
	"github.com/guiajf/meteostat/internal/weather"
	"github.com/guiajf/meteostat/pkg/meteostat"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Persistent download cache for the bulk dumps.
	downloadCache, err := cache.NewSQLite(cfg.CachePath)
	if err != nil {
		log.Fatalf("failed to open download cache: %v", err)
	}
	defer downloadCache.Close()

	// Weather-data client interpolating observations to exact points.
	clientOpts := []meteostat.Option{
		meteostat.WithHTTPClient(httpClient),
		meteostat.WithCache(downloadCache),
		meteostat.WithCacheTTL(cfg.CacheTTL),
		meteostat.WithRadius(cfg.StationRadiusM),
		meteostat.WithMaxStations(cfg.MaxStations),
	}
	if cfg.BulkEndpoint != "" {
		clientOpts = append(clientOpts, meteostat.WithEndpoint(cfg.BulkEndpoint))
	}
	client := meteostat.NewClient(clientOpts...)

	// Geocoding: Google when a key is configured, Nominatim otherwise.
	var geocoder geo.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	} else {
		geocoder = geo.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL)
	}

	elevation := geo.NewElevationClient(httpClient, cfg.ElevationBaseURL)

	// In-memory store with configured staleness.
	memStore := store.NewMemoryStore(cfg.SeriesMaxAge)

	// Core service orchestrating geocoding, elevation and interpolation.
	service := weather.NewService(geocoder, elevation, client, memStore)

	// Scheduler that keeps the configured locations' series warm.
	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, cfg.Lookback, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "meteostat",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meteostat",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
