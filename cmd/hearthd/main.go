// Hearth Core - Home Automation Hub
//
// This is the main entry point for the Hearth Core application.
// Hearth is a hub for MQTT-announced extensions designed for:
//   - Offline-first operation on a trusted home network
//   - Capability-based device control (lights, sensors, switches)
//   - Minute-resolution scheduled and event-driven automations
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/hearthlabs/hearth-core/migrations"

	"github.com/hearthlabs/hearth-core/internal/api"
	"github.com/hearthlabs/hearth-core/internal/bridges/hue"
	"github.com/hearthlabs/hearth-core/internal/hub"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/config"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/database"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/influxdb"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/logging"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthlabs/hearth-core/internal/room"
	"github.com/hearthlabs/hearth-core/internal/services"
	"github.com/hearthlabs/hearth-core/internal/transport"
	"github.com/hearthlabs/hearth-core/internal/work"
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
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Shared worker pool for fired automations and change notifications
	pool := work.NewPool(cfg.Automation.Workers, cfg.Automation.QueueSize)
	pool.SetLogger(log)
	defer func() {
		log.Info("stopping worker pool")
		pool.Close()
	}()

	// Outbound command path
	outbox := transport.NewOutbox(mqttClient, 0)
	outbox.SetLogger(log)
	defer func() {
		sent, dropped, expired := outbox.Stats()
		log.Info("closing outbox", "sent", sent, "dropped", dropped, "expired", expired)
		outbox.Close()
	}()

	// Room snapshot persistence
	snapshots := room.NewSQLiteSnapshotRepository(db.DB)
	snapshots.SetLogger(log)
	if initErr := snapshots.Init(ctx); initErr != nil {
		return fmt.Errorf("initialising room snapshots: %w", initErr)
	}

	// Assemble the core
	core := hub.New(hub.Options{
		Pool:      pool,
		Messenger: outbox,
		Influx:    influxClient,
		Snapshots: snapshots,
		Logger:    log,
	})
	if loadErr := core.LoadRooms(ctx); loadErr != nil {
		return fmt.Errorf("restoring rooms: %w", loadErr)
	}

	// Inbound report and handshake services
	dispatcher := transport.NewDispatcher()
	dispatcher.SetLogger(log)

	reports := services.NewReports(core.Devices)
	reports.SetLogger(log)
	reports.Register(dispatcher)

	handshake := services.NewHandshake(core.Devices, core.Messenger(), core.EventSink())
	handshake.SetLogger(log)
	handshake.SetHistoryRetention(cfg.Automation.HistoryRetention)
	handshake.Register(dispatcher)

	if startErr := dispatcher.Start(mqttClient); startErr != nil {
		return fmt.Errorf("subscribing to reports: %w", startErr)
	}
	log.Info("report dispatcher started", "handlers", dispatcher.HandlerCount())

	// Philips Hue bridge (optional)
	if cfg.Hue.Enabled {
		if hueErr := startHue(ctx, cfg, core, log); hueErr != nil {
			return fmt.Errorf("starting hue bridge: %w", hueErr)
		}
	} else {
		log.Info("hue bridge disabled")
	}

	// Minute-resolution automation scheduler
	go core.Automations.Run(ctx)
	log.Info("automation scheduler started")

	// HTTP API and WebSocket server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Core:     core,
		Version:  version,
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
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Persist final room state before the deferred teardown runs
	saveCtx, cancel := context.WithTimeout(context.Background(), cfg.GetWriteTimeout())
	defer cancel()
	for _, r := range core.Rooms.All() {
		if saveErr := snapshots.Save(saveCtx, r); saveErr != nil {
			log.Error("saving room snapshot", "room", r.Name, "error", saveErr)
		}
	}

	log.Info("Hearth Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startHue discovers the configured bridge's colour-temperature lights,
// registers them as extensions, and begins polling for state changes.
//
// Parameters:
//   - ctx: Context bounding discovery and the polling goroutine
//   - cfg: Application configuration
//   - core: Assembled hub receiving the discovered lights
//   - log: Logger instance
//
// Returns:
//   - error: If the bridge is unreachable or the username is rejected
func startHue(ctx context.Context, cfg *config.Config, core *hub.Hub, log *logging.Logger) error {
	bridge := hue.NewBridge(hue.Config{
		Host:     cfg.Hue.Host,
		Username: cfg.Hue.Username,
		Timeout:  cfg.HueTimeout(),
	})
	bridge.SetLogger(log)

	authorised, err := bridge.UsernameAuthorised(ctx)
	if err != nil {
		return fmt.Errorf("checking bridge credentials: %w", err)
	}
	if !authorised {
		return fmt.Errorf("bridge rejected username (press the link button and pair again)")
	}

	lights, err := bridge.Lights(ctx)
	if err != nil {
		return fmt.Errorf("discovering lights: %w", err)
	}

	for _, light := range lights {
		light.SetEventSink(core.EventSink())
		core.Devices.Add(light)
	}
	log.Info("hue lights registered", "count", len(lights))

	go bridge.Poll(ctx, lights, cfg.HuePollInterval())

	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
