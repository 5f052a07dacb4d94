package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardapiolabs/rota/internal/config"
	"github.com/cardapiolabs/rota/internal/distance"
	"github.com/cardapiolabs/rota/internal/geocache"
	"github.com/cardapiolabs/rota/internal/geocoding"
	"github.com/cardapiolabs/rota/internal/metrics"
	"github.com/cardapiolabs/rota/internal/models"
	"github.com/cardapiolabs/rota/internal/repository"
	"github.com/cardapiolabs/rota/internal/service"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for application metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection for restaurant/zone configuration.
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	repo := repository.NewRepository(dtb, logger)

	// Build the two caches. Coordinates keep a long TTL, distances a short
	// one; persistence backend is picked from configuration.
	coordCache := geocache.New(
		cfg.Cache.CoordinatesTTL,
		newPersistence[models.Coordinates](cfg, "coordinates", logger),
		logger,
	)
	distCache := geocache.New(
		cfg.Cache.DistancesTTL,
		newPersistence[float64](cfg, "distances", logger),
		logger,
	)

	// Create providers using the factory pattern based on configuration.
	geocoder, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Type),
		APIKey:    cfg.Geocoder.APIKey,
		Region:    cfg.Geocoder.Region,
		RateLimit: cfg.Geocoder.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	distProvider, err := distance.NewProvider(distance.ProviderConfig{
		Type:      distance.ProviderType(cfg.Distance.Type),
		APIKey:    cfg.Distance.APIKey,
		RateLimit: cfg.Distance.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create distance provider: %v", err)
	}

	logger.InfoContext(ctx, "Providers initialized",
		"geocoder", cfg.Geocoder.Type, "distance", cfg.Distance.Type)

	orchestrator, err := service.NewOrchestrator(
		logger, coordCache, distCache, geocoder, distProvider, appMetrics,
		service.DistanceConfig{
			UseLocalAlgorithms:      cfg.Policy.UseLocalAlgorithms,
			MaxLocalOnlyKm:          cfg.Policy.MaxLocalOnlyKm,
			UseProviderConfirmation: cfg.Policy.UseProviderConfirmation,
			MaxDifferenceKm:         cfg.Policy.MaxDifferenceKm,
		},
	)
	if err != nil {
		log.Fatalf("Failed to create distance orchestrator: %v", err)
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the HTTP server in a goroutine to allow main to listen for signals.
	go startServer(ctx, logger, reg, dtb, repo, orchestrator, cfg.Port)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	dtb.Close()
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newPersistence picks the cache persistence backend: Valkey when an
// address is configured, otherwise a JSON file snapshot when a cache
// directory is set, otherwise none. Failures degrade to in-memory only.
func newPersistence[V any](cfg *config.Config, name string, logger *slog.Logger) geocache.Persistence[V] {
	if cfg.Cache.ValkeyAddr != "" {
		store, err := geocache.NewValkeyPersistence[V](cfg.Cache.ValkeyAddr, "rota:cache:"+name)
		if err != nil {
			logger.Warn("Valkey persistence unavailable, cache will be memory-only",
				"cache", name, "error", err)
			return nil
		}
		return store
	}

	if cfg.Cache.Dir != "" {
		return geocache.NewFilePersistence[V](filepath.Join(cfg.Cache.Dir, name+".json"))
	}

	return nil
}

// startServer starts the HTTP server exposing health checks, metrics, the
// quote endpoint and the debug/administration surface for operational
// tuning (cache sizes, cache invalidation, runtime policy updates).
func startServer(
	ctx context.Context,
	logger *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	repo repository.Interface,
	orchestrator *service.Orchestrator,
	port int,
) {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		handleHealthz(writer, req, logger, dtb)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /quote", func(writer http.ResponseWriter, req *http.Request) {
		handleQuote(writer, req, logger, repo, orchestrator)
	})

	mux.HandleFunc("GET /debug/cache", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]int{
			"coordinates": orchestrator.CoordinateCacheSize(),
			"distances":   orchestrator.DistanceCacheSize(),
		})
	})

	mux.HandleFunc("POST /debug/cache/clear", func(writer http.ResponseWriter, req *http.Request) {
		switch name := req.URL.Query().Get("cache"); name {
		case "coordinates":
			orchestrator.ClearCoordinateCache()
		case "distances":
			orchestrator.ClearDistanceCache()
		case "all", "":
			orchestrator.ClearCoordinateCache()
			orchestrator.ClearDistanceCache()
		default:
			writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "unknown cache: " + name})
			return
		}
		logger.InfoContext(req.Context(), "Cache cleared by operator",
			"cache", req.URL.Query().Get("cache"))
		writer.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /debug/config", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, orchestrator.Config())
	})

	mux.HandleFunc("PUT /debug/config", func(writer http.ResponseWriter, req *http.Request) {
		var cfg service.DistanceConfig
		if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "malformed config body"})
			return
		}
		if err := orchestrator.SetConfig(cfg); err != nil {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logger.InfoContext(req.Context(), "Distance policy updated by operator", "config", cfg)
		writeJSON(writer, http.StatusOK, orchestrator.Config())
	})

	logger.InfoContext(ctx, "Starting server", "port", port)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.ErrorContext(ctx, "Server failed", "error", err)
	}
}

// pinger is the slice of *pgxpool.Pool the health check needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealthz reports liveness. The ping uses the request context so an
// in-flight check is bounded by the caller, not the server lifetime.
func handleHealthz(writer http.ResponseWriter, req *http.Request, logger *slog.Logger, db pinger) {
	status, body := http.StatusOK, "OK"
	if err := db.Ping(req.Context()); err != nil {
		status, body = http.StatusServiceUnavailable, "DB ping failed"
	}
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(body)); err != nil {
		logger.ErrorContext(req.Context(), "failed to write reply", "error", err)
	}
}

// handleQuote resolves a delivery fee quote: the restaurant's address is
// the origin, the customer address (or lat/lng pair) the destination, and
// the restaurant's zone table decides the fee band.
func handleQuote(
	writer http.ResponseWriter,
	req *http.Request,
	logger *slog.Logger,
	repo repository.Interface,
	orchestrator *service.Orchestrator,
) {
	query := req.URL.Query()

	restaurantID, err := strconv.ParseInt(query.Get("restaurant_id"), 10, 64)
	if err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "restaurant_id must be an integer"})
		return
	}

	destination, err := parseDestination(query.Get("address"), query.Get("lat"), query.Get("lng"))
	if err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	originAddress, err := repo.FetchRestaurantAddress(req.Context(), restaurantID)
	if err != nil {
		logger.ErrorContext(req.Context(), "Failed to fetch restaurant", "restaurant_id", restaurantID, "error", err)
		writeJSON(writer, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	zoneList, err := repo.FetchDeliveryZones(req.Context(), restaurantID)
	if err != nil {
		logger.ErrorContext(req.Context(), "Failed to fetch delivery zones", "restaurant_id", restaurantID, "error", err)
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "failed to load delivery zones"})
		return
	}

	quote, err := orchestrator.Quote(req.Context(), models.TextInput(originAddress), destination, zoneList)
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, geocoding.ErrAddressNotFound):
		writeJSON(writer, http.StatusUnprocessableEntity, map[string]string{"error": "address not recognized"})
		return
	case err != nil:
		logger.ErrorContext(req.Context(), "Quote failed", "restaurant_id", restaurantID, "error", err)
		writeJSON(writer, http.StatusBadGateway, map[string]string{"error": "distance resolution failed"})
		return
	}

	writeJSON(writer, http.StatusOK, quote)
}

// parseDestination accepts either a free-text address or a lat/lng pair.
func parseDestination(address, latStr, lngStr string) (models.AddressInput, error) {
	if address != "" {
		return models.TextInput(address), nil
	}

	if latStr == "" || lngStr == "" {
		return models.AddressInput{}, errors.New("either address or lat+lng is required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.AddressInput{}, errors.New("lat must be a valid latitude")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return models.AddressInput{}, errors.New("lng must be a valid longitude")
	}

	return models.CoordsInput(models.Coordinates{Latitude: lat, Longitude: lng}), nil
}

func writeJSON(writer http.ResponseWriter, status int, v any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(v)
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
