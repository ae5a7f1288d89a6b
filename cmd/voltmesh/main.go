// VoltMesh Core - Energy Device Orchestration Daemon
//
// This is the main entry point for the VoltMesh Core daemon. It runs
// the physical simulation and planning loop over the registered energy
// devices and exposes them through the HTTP API, MQTT and InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/voltmesh/voltmesh-core/migrations"

	"github.com/voltmesh/voltmesh-core/internal/api"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/config"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/database"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/influxdb"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/logging"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/mqtt"
	"github.com/voltmesh/voltmesh-core/internal/manager"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
	"github.com/voltmesh/voltmesh-core/internal/orchestrator"
	"github.com/voltmesh/voltmesh-core/internal/units"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting VoltMesh Core",
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

	// Open database and apply migrations
	db, err := database.Open(database.Config{
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

	// Build the device manager and rehydrate the in-memory registries
	// from the durable store.
	mgr := manager.New(db.DB)
	mgr.SetLogger(log)
	if restoreErr := mgr.Restore(ctx); restoreErr != nil {
		return fmt.Errorf("restoring device registries: %w", restoreErr)
	}

	// Wire the planning loop. The flat tariff converts the configured
	// euro-per-kWh price to the internal euro-per-Wh unit.
	price := optimizer.FlatPrice(units.EuroPerWattHour(cfg.Orchestrator.PricePerKWh / 1000))
	orch := orchestrator.New(mgr, optimizer.NewGreedy(), price, cfg.Horizon())
	orch.SetLogger(log)

	var telemetry []orchestrator.Telemetry

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
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
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		telemetry = append(telemetry, mqtt.NewTelemetry(mqttClient))
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
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
		telemetry = append(telemetry, influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the HTTP API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Logger:       log,
		Manager:      mgr,
		Orchestrator: orch,
		DB:           db,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// The WebSocket hub streams states and cycle results to clients, so
	// it joins the telemetry fan-out alongside MQTT and InfluxDB.
	telemetry = append(telemetry, server.Hub())
	orch.SetTelemetry(orchestrator.FanOut(telemetry...))

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, starting orchestration loop",
		"tick_interval", cfg.TickInterval(),
		"cycle_interval", cfg.CycleInterval(),
		"horizon", cfg.Horizon(),
	)

	// Blocks until the shutdown signal cancels ctx. Deferred Close()
	// calls then run in reverse order: API, InfluxDB, MQTT, database.
	loopErr := orch.Loop(ctx, cfg.TickInterval(), cfg.CycleInterval())
	if loopErr != nil && !errors.Is(loopErr, ctx.Err()) {
		return fmt.Errorf("orchestration loop: %w", loopErr)
	}

	log.Info("shutdown signal received, cleaning up")

	log.Info("VoltMesh Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses VOLTMESH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VOLTMESH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
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
	return nil
}
