// Command dominogame starts the Domino Board Game.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays one game on the terminal
//
// Flags control host/port, config and sessions directories, the leaderboard
// file, debug logging, and optional ngrok tunneling for easy external access
// during development. Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dominogame/api"
	"github.com/wricardo/mcp-training/dominogame/game/config"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/service"
	"github.com/wricardo/mcp-training/dominogame/game/session"
	"github.com/wricardo/mcp-training/dominogame/transport/console"
	"github.com/wricardo/mcp-training/dominogame/transport/mcp"
	"github.com/wricardo/mcp-training/dominogame/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Domino Board Game Server"
)

// options holds the resolved flag values shared by every mode
type options struct {
	host        string
	port        int
	configDir   string
	sessionsDir string
	scoresFile  string
	debug       bool
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// services bundles everything the modes share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	configs     *config.Manager
	scores      *leaderboard.Leaderboard
}

// main loads .env, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. The play mode talks to in and out.
func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "dominogame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory where sessions are persisted", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "scores-file", Value: "top.json", Usage: "Leaderboard file", Sources: cli.EnvVars("SCORES_FILE")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, optionsFromCommand(cmd))
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServer(ctx, optionsFromCommand(cmd))
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, optionsFromCommand(cmd))
				},
			},
			{
				Name:  "play",
				Usage: "Play one game on the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "Configuration name (defaults to the default configuration)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runConsole(ctx, optionsFromCommand(cmd), cmd.String("config"), in, out)
				},
			},
		},
	}
}

func optionsFromCommand(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        int(cmd.Int("port")),
		configDir:   cmd.String("config-dir"),
		sessionsDir: cmd.String("sessions-dir"),
		scoresFile:  cmd.String("scores-file"),
		debug:       cmd.Bool("debug"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
	}
}

func setupLogging(debug bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.InfoLevel)
		log.SetReportCaller(false)
	}
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServer(ctx context.Context, opts options) error {
	log.Infof("Starting %s v%s (mode: server)", AppName, Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	go sessionCleanupRoutine(ctx, svc.sessions)
	go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := opts.addr()
	mainRouter := newRouter(api.NewServer(svc.game, hub), mcp.NewClient(fmt.Sprintf("http://%s", addr)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err = <-serverErr:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Errorf("HTTP server shutdown error: %v", shutdownErr)
	}
	if saveErr := svc.sessions.SaveAllSessions(); saveErr != nil {
		log.Warnf("Failed to save sessions on shutdown: %v", saveErr)
	}

	wg.Wait()
	log.Info("Server stopped")
	return err
}

// newRouter mounts the API at the root and the MCP proxy on /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler serves single JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Infof("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Errorf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Errorf("Ngrok server error: %v", err)
	}
	log.Info("Ngrok tunnel closed")
}

// initializeServices wires session/config managers, the leaderboard and the game service.
func initializeServices(opts options) (*services, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, session.WithLogger(log.StandardLogger()))
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warnf("Failed to load persisted sessions: %v", err)
	}

	scores, err := leaderboard.New(leaderboard.DefaultCapacity, leaderboard.NewFileStore(opts.scoresFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open leaderboard: %w", err)
	}

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithScoreboard(scores),
		service.WithLogger(log.StandardLogger()),
	)

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		configs:     configManager,
		scores:      scores,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// filesystemSyncRoutine periodically syncs in-memory sessions with filesystem state.
// It removes sessions from memory when their corresponding files are deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneDeletedSessions(manager, persistence); pruned > 0 {
				log.Infof("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

// pruneDeletedSessions drops in-memory sessions whose file is gone
func pruneDeletedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.Debugf("Pruned session %s from memory (file deleted)", s.ID)
		}
	}
	return pruned
}

// runStdioMCP runs an MCP stdio server.
// It reuses an API already listening on host:port; otherwise it starts an
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options) error {
	externalURL := fmt.Sprintf("http://%s", opts.addr())
	baseURL := externalURL

	log.Infof("Checking for external API server at %s...", externalURL)
	if apiAvailable(ctx, externalURL) {
		log.Infof("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Infof("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Internal HTTP server error: %v", err)
			}
		}()
		defer func() {
			httpServer.Close()
			if err := svc.sessions.SaveAllSessions(); err != nil {
				log.Warnf("Failed to save sessions: %v", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Infof("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a game API answers its health check at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runConsole plays a single game on in/out and records a winning time in the leaderboard file
func runConsole(ctx context.Context, opts options, configName string, in io.Reader, out io.Writer) error {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	gameConfig := configManager.GetDefault()
	if configName != "" {
		if gameConfig, err = configManager.LoadConfig(configName); err != nil {
			return fmt.Errorf("failed to load config %q: %w", configName, err)
		}
	}

	scores, err := leaderboard.New(leaderboard.DefaultCapacity, leaderboard.NewFileStore(opts.scoresFile))
	if err != nil {
		return fmt.Errorf("failed to open leaderboard: %w", err)
	}

	var boardOpts []engine.BoardOption
	if opts.debug {
		boardOpts = append(boardOpts, engine.WithObserver(engine.NewLogObserver(log.WithField("mode", "play"))))
	}
	eng, err := engine.NewEngine(gameConfig, boardOpts...)
	if err != nil {
		return err
	}

	result, err := console.New(eng, in, out,
		console.WithScoreboard(scores),
		console.WithLogger(log.StandardLogger()),
	).Play(ctx)
	if errors.Is(err, console.ErrQuit) {
		fmt.Fprintln(out, "Bye!")
		return nil
	}
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"victory": result.Victory,
		"score":   result.Score,
		"empty":   result.EmptyCells,
	}).Debug("Game finished")
	return nil
}
