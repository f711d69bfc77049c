// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/versionbox/internal/api/connect"
	"github.com/osa030/versionbox/internal/app/catalog"
	"github.com/osa030/versionbox/internal/app/dispatch"
	"github.com/osa030/versionbox/internal/app/playback"
	"github.com/osa030/versionbox/internal/app/session"
	"github.com/osa030/versionbox/internal/domain/group"
	"github.com/osa030/versionbox/internal/infra/config"
	"github.com/osa030/versionbox/internal/infra/logger"
	"github.com/osa030/versionbox/internal/infra/metrics"
)

var (
	app        = kingpin.New("versionbox-server", "versionbox song versions widget server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// titles command
	titlesCmd = app.Command("titles", "Print the title groups of the catalog and exit")

	// controls command
	controlsCmd = app.Command("controls", "List widget controls and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == controlsCmd.FullCommand() {
		printControls()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closeLog()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == titlesCmd.FullCommand() {
		if err := printTitles(cfg); err != nil {
			zlog.Error().Msgf("Failed to list titles: %v", err)
			os.Exit(1)
		}
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// newCoordinator loads the catalog and builds the playback coordinator.
func newCoordinator(ctx context.Context, cfg *config.Config) (*playback.Coordinator, error) {
	records, err := catalog.FromConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}
	metrics.CatalogRecords.Set(float64(len(records)))

	return playback.NewCoordinator(group.Build(records), playback.Config{
		VideoHost: cfg.Embed.VideoHost,
		Mute:      cfg.Embed.Mute,
	}), nil
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord, err := newCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("Catalog ready: titles=%d records=%d", coord.Index().Len(), len(coord.Index().Records()))

	// Create session manager
	sessionMgr := session.NewManager(cfg, coord)

	// Create RPC service
	widgetService := apiconnect.NewWidgetService(sessionMgr, cfg)
	widgetPath, widgetHandler := apiconnect.NewWidgetServiceHandler(
		widgetService,
		connect.WithInterceptors(apiconnect.NewTokenInterceptor(cfg)),
	)

	router := setupRouter(widgetPath, widgetHandler)

	// Determine server address
	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start idle session reaper
	sessionMgr.Start(ctx)

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		sessionMgr.Shutdown()
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Close sessions first to terminate active streams
	sessionMgr.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

func setupRouter(widgetPath string, widgetHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	// Health check and metrics
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Connect procedures
	r.PathPrefix(widgetPath).Handler(widgetHandler)

	return r
}

// printTitles prints the title groups with their version counts.
func printTitles(cfg *config.Config) error {
	coord, err := newCoordinator(context.Background(), cfg)
	if err != nil {
		return err
	}

	index := coord.Index()
	fmt.Printf("Titles (%d):\n", len(index.Titles()))
	for _, title := range index.Titles() {
		fmt.Printf("  %-40s %d versions\n", title, len(index.Versions(title)))
	}
	return nil
}

// printControls prints available widget controls.
func printControls() {
	fmt.Println("Available Controls:")
	registered := dispatch.Registered()
	for _, name := range dispatch.Names() {
		c := registered[name]()
		scope := "view"
		if c.RecordScoped() {
			scope = "record"
		}
		fmt.Printf("  %-16s - %s [%s]\n", c.Name(), c.Description(), scope)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
