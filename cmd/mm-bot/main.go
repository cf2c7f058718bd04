// Package main is the mm-bot CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/bot"
	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/config"
	"github.com/chastnik/mm-bot/internal/confluence"
	"github.com/chastnik/mm-bot/internal/detect"
	"github.com/chastnik/mm-bot/internal/llm"
	"github.com/chastnik/mm-bot/internal/normalize"
	"github.com/chastnik/mm-bot/internal/platform"
	"github.com/chastnik/mm-bot/internal/report"
	"github.com/chastnik/mm-bot/internal/server"
	"github.com/chastnik/mm-bot/internal/session"
	"github.com/chastnik/mm-bot/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/mm-bot/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "catalog":
		runCatalog()
	case "version", "--version", "-v":
		fmt.Printf("mm-bot version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := catalog.NewRegistry()
	if cfg.Catalog.Path != "" {
		if err := registry.LoadFile(cfg.Catalog.Path); err != nil {
			logger.Fatal("Failed to load artifact catalog", zap.Error(err))
		}
		if cfg.Catalog.Watch {
			if err := registry.Watch(ctx, cfg.Catalog.Path, logger); err != nil {
				logger.Warn("catalog watch disabled", zap.Error(err))
			}
		}
	}

	var fetcher confluence.Fetcher
	if cfg.Confluence.BaseURL != "" {
		client, err := confluence.NewClient(
			cfg.Confluence.BaseURL,
			cfg.Confluence.Username,
			cfg.Confluence.Token,
			cfg.Confluence.MaxDepth,
			time.Duration(cfg.Confluence.TimeoutSeconds)*time.Second,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize confluence client", zap.Error(err))
		}
		fetcher = client
	} else {
		logger.Info("confluence integration disabled")
	}

	renderer, err := report.NewRenderer(cfg.Report, registry, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report renderer", zap.Error(err))
	}

	mm := platform.NewMattermost(cfg.Mattermost, logger)
	if err := mm.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect to mattermost", zap.Error(err))
	}

	sessions := session.NewStore(time.Duration(cfg.Session.ExpiryHours) * time.Hour)
	engine := detect.NewEngine(llm.NewOpenAIClient(cfg.LLM, logger), cfg.Analysis, logger)
	normalizer := normalize.NewNormalizer(fetcher, logger)
	b := bot.New(mm, sessions, registry, normalizer, engine, renderer, cfg, logger)

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(b, cfg.Server, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("Ops server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down...")
		cancel()
	}()

	_ = b.Run(ctx)

	if srv != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = srv.Stop(stopCtx)
	}
}

// runCatalog prints the effective artifact catalog, validating the override
// file if one is configured.
func runCatalog() {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	registry := catalog.NewRegistry()
	if cfg, _, err := loadConfig(*configPath); err == nil && cfg.Catalog.Path != "" {
		if err := registry.LoadFile(cfg.Catalog.Path); err != nil {
			fmt.Printf("Failed to load artifact catalog: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Project types:")
	types := registry.ProjectTypes()
	codes := make([]string, 0, len(types))
	for _, t := range types {
		fmt.Printf("  %-6s %s\n", t.Code, t.Name)
		codes = append(codes, t.Code)
	}
	fmt.Println()
	for _, category := range registry.Categories(codes) {
		fmt.Printf("[%s]\n", category)
		for _, def := range registry.ForSelection(codes) {
			if def.Category != category {
				continue
			}
			fmt.Printf("  %-28s %s\n", def.ID, def.Name)
		}
	}
}

func printUsage() {
	fmt.Println(`mm-bot - Mattermost bot for project documentation analysis

Usage:
  mm-bot serve [flags]     Start the bot
  mm-bot catalog [flags]   Print the effective artifact catalog
  mm-bot version           Show version
  mm-bot help              Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/mm-bot/config.yaml)
  --debug            Enable debug logging

Catalog Flags:
  --config string    Config file path

Examples:
  mm-bot serve
  mm-bot serve --config ./config.yaml --debug
  mm-bot catalog`)
}
