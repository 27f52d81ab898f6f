// Tillfold Core - point of sale engine
//
// This is the main entry point for the Tillfold Core application: the
// transaction and catalog engine behind a till. It serves the HTTP API and
// WebSocket stream, bridges barcode scanners and receipt printers over MQTT,
// and keeps the catalog and sales ledger in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tillfold/tillfold-core/migrations"

	"github.com/tillfold/tillfold-core/internal/api"
	"github.com/tillfold/tillfold-core/internal/catalog"
	"github.com/tillfold/tillfold-core/internal/infrastructure/config"
	"github.com/tillfold/tillfold-core/internal/infrastructure/database"
	"github.com/tillfold/tillfold-core/internal/infrastructure/influxdb"
	"github.com/tillfold/tillfold-core/internal/infrastructure/logging"
	"github.com/tillfold/tillfold-core/internal/infrastructure/mqtt"
	"github.com/tillfold/tillfold-core/internal/peripheral"
	"github.com/tillfold/tillfold-core/internal/sale"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Tillfold Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Catalog store and barcode resolver
	catalogRepo := catalog.NewSQLiteRepository(db.DB)
	store := catalog.NewStore(catalogRepo)
	store.SetLogger(log)
	if loadErr := store.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading catalog: %w", loadErr)
	}
	log.Info("catalog loaded", "products", store.Count())

	resolver := catalog.NewResolver(store)

	// Sales ledger and the till session
	ledger := sale.NewSQLiteRepository(db.DB)
	session := sale.NewSession(resolver, ledger)
	session.SetLogger(log)

	// Peripheral tracker; the MQTT bridge becomes its provider below
	tracker := peripheral.NewTracker(nil)
	tracker.SetLogger(log)

	// Connect to MQTT broker (optional; the till works standalone)
	var (
		mqttClient *mqtt.Client
		bridge     *peripheral.Bridge
		printer    sale.PrintSink
	)
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		topics := mqtt.NewTopics(cfg.Peripherals.TopicPrefix)
		bridge = peripheral.NewBridge(mqttClient, topics, tracker, nil)
		bridge.SetLogger(log)
		tracker.SetProvider(bridge)
		printer = bridge.PrintSink()
	} else {
		log.Info("MQTT disabled, running standalone")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Record peripheral connect/disconnect transitions as metrics.
		influx := influxClient
		tracker.Subscribe(func(ev peripheral.Event) {
			influx.WritePeripheralStatus(cfg.Store.ID, string(ev.Device.Role), ev.Connected)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Store:   cfg.Store,
		Logger:  log,
		Catalog: store,
		Session: session,
		Ledger:  ledger,
		Tracker: tracker,
		Printer: printer,
		Metrics: influxClient,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Feed hardware scans into the session once the API is up, so MQTT
	// scans push the same cart updates to WebSocket clients as HTTP scans.
	if bridge != nil {
		bridge.SetScanHandler(func(barcode string) {
			session.AddByBarcode(barcode)
			apiServer.NotifyCartUpdated()
		})
		if startErr := bridge.Start(); startErr != nil {
			return fmt.Errorf("starting peripheral bridge: %w", startErr)
		}
		log.Info("peripheral bridge started", "topic_prefix", cfg.Peripherals.TopicPrefix)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Tillfold Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses TILLFOLD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TILLFOLD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their subsystem is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
