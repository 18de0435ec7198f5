package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/pickledire/feign-server-go/internal/catalog"
	"github.com/pickledire/feign-server-go/internal/config"
	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/repository"
	"github.com/pickledire/feign-server-go/internal/server"
	"github.com/pickledire/feign-server-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Feign server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that is cancelled on termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the card pool
	cards, err := loadCatalog(cfg.Game)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("cards", cards.Len()))

	// Open match store
	store, err := repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open match store", zap.Error(err))
	}
	defer store.Close()

	// Replay recorder
	var recorder *game.ReplayRecorder
	if cfg.Replay.Enabled {
		if err := os.MkdirAll(cfg.Replay.Directory, 0o755); err != nil {
			logger.Fatal("failed to create replay directory", zap.Error(err))
		}
		recorder = game.NewReplayRecorder(logger, cfg.Replay.Directory)
		logger.Info("replay recording enabled", zap.String("directory", cfg.Replay.Directory))
	}

	// Initialize session manager
	sessionMgr, err := session.NewManager(session.Options{
		Rules:    cfg.Game.Rules(),
		Seed:     cfg.Game.Seed,
		Catalog:  cards,
		Store:    store,
		Recorder: recorder,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to create session manager", zap.Error(err))
	}
	logger.Info("session manager initialized")

	dispatcher := server.NewDispatcher(sessionMgr, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.GRPC.Address != "" {
		grpcServer := server.NewGRPCServer(cfg.Server.GRPC, dispatcher, logger)
		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.Error(err))
		}
		g.Go(func() error {
			return server.ServeGRPC(gctx, grpcServer, lis, logger)
		})
	}

	if cfg.Server.WebSocket.Address != "" {
		wsServer := server.NewWebSocketServer(cfg.Server.WebSocket, dispatcher, logger)
		sessionMgr.SetNotificationHandler(wsServer.Notify)
		g.Go(func() error {
			return server.ListenAndServeWebSocket(gctx, wsServer, cfg.Server.ShutdownTimeout)
		})
	}

	logger.Info("Feign server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	// Wait for termination signal or a server failure
	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down gracefully...")
	if err := sessionMgr.ResetGame(context.Background()); err != nil {
		logger.Warn("failed to close active game", zap.Error(err))
	}
	logger.Info("Feign server stopped")
}

func loadCatalog(cfg config.GameConfig) (*catalog.Catalog, error) {
	if cfg.CardsFile != "" {
		return catalog.LoadFile(cfg.CardsFile)
	}
	return catalog.Default()
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
