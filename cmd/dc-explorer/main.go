package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/api"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/catalog"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/images"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/search"
)

type server interface {
	Start(ctx context.Context, addr string) error
}

var (
	loadConfig = func() (config.Config, error) {
		return config.Load(), nil
	}
	newLogger   = logging.New
	loadCatalog = func(path string) (*catalog.Catalog, error) {
		if path == "" {
			return catalog.Default(), nil
		}
		return catalog.LoadFile(path)
	}
	newProvider = llm.NewProvider
	newBroker   = events.NewBroker
	newServer   = func(searcher *search.Service, broker *events.Broker, cfg config.Config, logger *slog.Logger) server {
		return api.NewServer(searcher, broker, cfg, logger)
	}
	notifyContext = signal.NotifyContext
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout).With(logging.Service("dc-explorer"))
	slog.SetDefault(logger)

	ctx, cancel := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	llmCfg, err := cfg.LLM()
	if err != nil {
		return err
	}
	if err := llm.Validate(llmCfg); err != nil {
		logger.Warn("agent provider not configured, searches will fail until it is", logging.Error(err))
	}
	provider, err := newProvider(llmCfg)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.ImageCatalogPath)
	if err != nil {
		return fmt.Errorf("load image catalog: %w", err)
	}
	resolver := images.NewResolver(
		images.WithCatalog(cat),
		images.WithLogger(logger),
		images.WithUserAgent(cfg.UserAgent),
		images.WithTimeouts(cfg.PageFetchTimeout, cfg.ImageProbeTimeout),
		images.WithMaxHTMLBytes(cfg.MaxHTMLBytes),
		images.WithConcurrency(cfg.ResolveConcurrency),
	)
	searcher := search.NewService(provider, resolver,
		search.WithLogger(logger),
		search.WithTimeout(cfg.LLMTimeout),
	)

	server := newServer(searcher, newBroker(), cfg, logger)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("DC Explorer listening", slog.String("addr", addr), slog.String("provider", provider.Name()))
	if err := server.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
