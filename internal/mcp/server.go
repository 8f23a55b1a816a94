// Package mcp provides an MCP (Model Context Protocol) server exposing the
// resonance engine, the fidelity analyzers, and the result history as tools.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/resonance/internal/config"
	"github.com/nvandessel/resonance/internal/fidelity"
	"github.com/nvandessel/resonance/internal/logging"
	"github.com/nvandessel/resonance/internal/pathutil"
	"github.com/nvandessel/resonance/internal/ratelimit"
	"github.com/nvandessel/resonance/internal/resonance"
	"github.com/nvandessel/resonance/internal/store"
)

// Server wraps the MCP SDK server and provides resonance-specific functionality.
type Server struct {
	server     *sdk.Server
	engine     *resonance.Engine
	comparator *fidelity.Comparator
	analyzer   *fidelity.Analyzer
	settings   *config.ResonanceConfig
	store      store.ResultStore
	root       string

	toolLimiters   ratelimit.ToolLimiters
	auditLogger    *AuditLogger
	decisionLogger *logging.DecisionLogger
	logger         *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "resonance")
	Version string // Server version
	Root    string // Project root directory

	// Settings is the loaded resonance configuration. Nil means config.Default().
	Settings *config.ResonanceConfig

	// LogOutput receives operational logs. Nil means stderr, since stdout
	// carries the protocol.
	LogOutput io.Writer
}

// NewServer creates a new MCP server with resonance tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	engineCfg, err := settings.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build engine config: %w", err)
	}
	engine, err := resonance.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	var results store.ResultStore
	if settings.Store.Enabled {
		sqliteStore, err := store.NewSQLiteStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open result store: %w", err)
		}
		results = sqliteStore
	} else {
		results = store.NewInMemoryStore()
	}

	logOut := cfg.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := logging.NewLoggerWithFormat(settings.Logging.Level, settings.Logging.Format, logOut)

	resonanceDir := store.LocalResonancePath(cfg.Root)
	decisions := logging.NewDecisionLogger(resonanceDir, settings.Logging.Level)
	opts := settings.RunOptions()

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server: mcpServer,
		engine: engine,
		comparator: fidelity.NewComparator(engine, settings.ComparatorConfig()).
			WithRunOptions(opts).
			WithDecisionLogger(decisions),
		analyzer: fidelity.NewAnalyzer(engine).
			WithRunOptions(opts).
			WithDecisionLogger(decisions),
		settings:       settings,
		store:          results,
		root:           cfg.Root,
		toolLimiters:   ratelimit.NewToolLimiters(),
		auditLogger:    NewAuditLogger(resonanceDir),
		decisionLogger: decisions,
		logger:         logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutting down on signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server starting", "root", pathutil.RedactPath(s.root), "store_enabled", s.settings.Store.Enabled)
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.decisionLogger.Close()
	auditErr := s.auditLogger.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return auditErr
}
