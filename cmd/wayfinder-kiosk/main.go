// Command wayfinder-kiosk runs the indoor navigation kiosk runtime: it talks
// to the campus navigation API, animates routes, and streams display frames
// to attached front-ends over WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/uninav/wayfinder/internal/cache"
	"github.com/uninav/wayfinder/internal/config"
	"github.com/uninav/wayfinder/internal/dispatcher"
	"github.com/uninav/wayfinder/internal/display"
	"github.com/uninav/wayfinder/internal/display/terminal"
	"github.com/uninav/wayfinder/internal/display/wshub"
	"github.com/uninav/wayfinder/internal/geo"
	"github.com/uninav/wayfinder/internal/handlers"
	"github.com/uninav/wayfinder/internal/idle"
	"github.com/uninav/wayfinder/internal/influx"
	"github.com/uninav/wayfinder/internal/logging"
	"github.com/uninav/wayfinder/internal/navapi"
	"github.com/uninav/wayfinder/internal/otel"
	"github.com/uninav/wayfinder/internal/server"
	"github.com/uninav/wayfinder/internal/session"
)

const serviceName = "wayfinder-kiosk"

func main() {
	configDir := flag.String("config", ".", "directory containing wayfinder_kiosk.cfg.json")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	sessionStart := time.Now()

	if err := config.Load(configDir); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logging: console, session log file, optional OTel export.
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, serviceName, sessionStart),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	var otelLogFile *os.File
	otelCfg := otel.Config{
		Enabled:      config.GetBool("otel.enabled"),
		ServiceName:  serviceName,
		BatchTimeout: 5 * time.Second,
		Endpoint:     config.GetString("otel.endpoint"),
		Insecure:     config.GetBool("otel.insecure"),
	}
	if otelCfg.Enabled {
		otelLogFile, err = os.OpenFile(
			logging.LogFilePath(logsDir, serviceName+".otel", sessionStart),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening otel log file: %w", err)
		}
		defer otelLogFile.Close()
		otelCfg.LogWriter = otelLogFile
	}
	otelProvider, err := otel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, config.GetString("logLevel"), otelProvider.LoggerProvider())
	logger := logManager.Logger()

	// Cache with store backend from config.
	store, err := cache.NewStore(cache.StoreConfig{
		Type:        config.GetString("cache.type"),
		SqlitePath:  config.GetString("cache.sqlitePath"),
		PostgresDSN: config.GetString("cache.postgresDsn"),
	}, logger)
	if err != nil {
		return fmt.Errorf("creating cache store: %w", err)
	}
	responseCache := cache.NewResponseCache(store, config.CacheMaxAge())
	defer responseCache.Close()

	client := navapi.New(config.GetString("api.baseUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		logger.Warn("Navigation API unreachable at startup", "error", err)
	}

	// Geo referencer for telemetry coordinates. Skipped when the building
	// anchor is not configured.
	var referencer *geo.Referencer
	anchorLon := config.GetFloat64("building.anchorLon")
	anchorLat := config.GetFloat64("building.anchorLat")
	if anchorLon != 0 || anchorLat != 0 {
		referencer, err = geo.NewReferencer(anchorLon, anchorLat, config.GetFloat64("building.metersPerUnit"))
		if err != nil {
			logger.Warn("Invalid building anchor, telemetry coordinates disabled", "error", err)
		}
	}

	kioskID := config.GetString("kiosk.id")

	// Telemetry is best-effort: a failed connect leaves the manager writing
	// to its gzip backup file or disabled entirely.
	var telemetry *influx.Manager
	if config.GetBool("influx.enabled") {
		zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		telemetry = influx.NewManager(zlog,
			logging.LogFilePath(logsDir, serviceName+".influx_backup", sessionStart)+".gz",
			kioskID, referencer)
		if err := telemetry.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
			telemetry = nil
		} else {
			defer telemetry.Close()
		}
	}

	// Display surfaces: always the WebSocket hub, optionally the terminal
	// preview for development.
	hub := wshub.New(logger)
	surfaces := display.Multi{hub}
	if config.GetBool("display.terminalPreview") {
		preview, err := terminal.New()
		if err != nil {
			logger.Warn("Terminal preview unavailable", "error", err)
		} else {
			surfaces = append(surfaces, preview)
		}
	}
	defer surfaces.Close()

	sess := session.NewContext()

	service := handlers.NewService(handlers.Dependencies{
		Client:            client,
		Cache:             responseCache,
		Offline:           cache.NewOfflineTracker(),
		LogManager:        logManager,
		Session:           sess,
		Surface:           surfaces,
		Telemetry:         telemetry,
		KioskID:           kioskID,
		RevealSpeed:       config.GetFloat64("display.revealSpeed"),
		RequestFullscreen: config.GetBool("idle.requestFullscreen"),
	})

	idleController := idle.New(config.IdleTimeout(), service.HandleIdleExpire, service.HandleWake)
	service.SetIdleController(idleController)

	if err := service.Bootstrap(); err != nil {
		// The kiosk still serves its attract screen; searches fail until a
		// refresh succeeds.
		logger.Error("Bootstrap failed, starting without building data", "error", err)
	}

	disp, err := dispatcher.New(slogAdapter{logger})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	service.RegisterHandlers(disp)

	idleController.Start()
	defer idleController.Stop()

	srv := server.New(config.GetString("server.listenAddr"), logger, disp, service, sess, hub)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	service.Shutdown()
	hub.Close()

	if err := logManager.Flush(shutdownCtx); err != nil {
		logger.Error("Log flush failed", "error", err)
	}
	if err := otelProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("OTel shutdown failed", "error", err)
	}

	return nil
}

// slogAdapter satisfies the dispatcher's Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Debug(msg string, keysAndValues ...any) { a.logger.Debug(msg, keysAndValues...) }
func (a slogAdapter) Info(msg string, keysAndValues ...any)  { a.logger.Info(msg, keysAndValues...) }
func (a slogAdapter) Error(msg string, keysAndValues ...any) { a.logger.Error(msg, keysAndValues...) }
