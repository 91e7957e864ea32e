// SLM Aim Controller - phase pattern presenter for spatial light modulators
//
// This is the main entry point for the aim controller that drives the
// instrument's spatial light modulator. The controller:
//   - Listens for aim and laser traffic on the instrument's MQTT topics
//   - Computes phase patterns for the active laser wavelength
//   - Presents each pattern fullscreen on the modulator head
//
// For the wire protocol, see internal/protocol.
// For the computation pipeline, see internal/pattern.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumenlab/slm-aim/internal/dispatch"
	"github.com/lumenlab/slm-aim/internal/display"
	"github.com/lumenlab/slm-aim/internal/fsio"
	"github.com/lumenlab/slm-aim/internal/infrastructure/config"
	"github.com/lumenlab/slm-aim/internal/infrastructure/logging"
	"github.com/lumenlab/slm-aim/internal/infrastructure/mqtt"
	"github.com/lumenlab/slm-aim/internal/pattern"
	"github.com/lumenlab/slm-aim/internal/protocol"
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
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
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
	log.Info("starting SLM aim controller",
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

	store := fsio.NewDisk()
	topics := protocol.NewTopics(cfg.Instrument.Serial)

	// The disconnect message doubles as the broker-side will: peers learn
	// the controller is gone whether it exits cleanly or the link drops.
	goodbye, err := protocol.Encode(protocol.DeviceMessage(protocol.AimDisconnect{}))
	if err != nil {
		return fmt.Errorf("encoding disconnect message: %w", err)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, &mqtt.Will{
		Topic:   topics.Aim(),
		Payload: goodbye,
		QoS:     byte(cfg.MQTT.QoS),
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		// The broker withholds the will on a graceful disconnect, so the
		// goodbye goes out by hand before the connection closes.
		if pubErr := mqttClient.Publish(topics.Aim(), goodbye, byte(cfg.MQTT.QoS), false); pubErr != nil {
			log.Error("error publishing disconnect", "error", pubErr)
		}
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	mqttClient.SetLogger(log)

	// Create the presentation window
	window, err := display.New(cfg.Screen)
	if err != nil {
		return fmt.Errorf("creating display: %w", err)
	}
	log.Info("display ready",
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"fullscreen", cfg.Screen.Fullscreen,
	)

	// Assemble the computation pipeline
	cache := pattern.NewCache(store)
	engine := pattern.NewEngine(pattern.Config{
		Width:        cfg.Screen.Width,
		Height:       cfg.Screen.Height,
		BaseDir:      cfg.Paths.BasePatterns,
		FlatnessDir:  cfg.Paths.FlatnessCorrections,
		Extensions:   cfg.Compute.ImageExtensions,
		Wavelengths:  cfg.Compute.Calibration.Wavelengths,
		ScaleFactors: cfg.Compute.Calibration.ScaleFactors,
		AddFlatness:  cfg.Compute.AddFlatnessCorrection,
		DebugSave:    cfg.Compute.SaveDebugRaster,
	}, store, cache)

	dispatcher, err := dispatch.New(dispatch.Options{
		Engine:    engine,
		Store:     store,
		Publisher: mqttClient,
		Sink:      window,
		Topics:    topics,
		BaseDir:   cfg.Paths.BasePatterns,
		Initial: dispatch.State{
			Wavelength: cfg.Defaults.Wavelength,
			Fresnel:    cfg.Defaults.Fresnel,
			Pattern:    cfg.Defaults.Pattern.Selector,
		},
		Logger: log.With("component", "dispatch"),
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	// The startup pattern must be computable before we accept commands. A
	// modulator showing undefined phase is worse than no modulator at all.
	if err := dispatcher.Refresh(); err != nil {
		return fmt.Errorf("computing startup pattern: %w", err)
	}
	log.Info("startup pattern staged",
		"wavelength", cfg.Defaults.Wavelength,
		"fresnel", cfg.Defaults.Fresnel,
	)

	// Subscribe to the instrument's command topics. Handlers run on paho's
	// router goroutine and only enqueue; the frame loop does the work.
	for _, topic := range topics.Subscriptions() {
		if subErr := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), func(_ string, payload []byte) error {
			return dispatcher.Enqueue(payload)
		}); subErr != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, subErr)
		}
	}
	log.Info("subscriptions established", "topics", topics.Subscriptions())

	// Set up MQTT lifecycle callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, re-announcing state")
		dispatcher.RequestAnnounce()
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// The initial connect fired before the callback above was registered,
	// so the first announce is requested by hand.
	dispatcher.RequestAnnounce()

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}

	log.Info("initialisation complete, entering presentation loop")

	// The window's frame loop is the process's main loop. Each tick pumps
	// queued commands through the dispatcher; the loop ends on a shutdown
	// signal, a window close, or a reboot command.
	if err := window.Run(ctx, dispatcher.Pump); err != nil {
		if errors.Is(err, dispatch.ErrHalted) {
			log.Warn("reboot requested, shutting down")
			return nil
		}
		return fmt.Errorf("presentation loop: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup publishes the disconnect message and closes MQTT.

	log.Info("SLM aim controller stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SLMAIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SLMAIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
