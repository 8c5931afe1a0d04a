package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"xrayrag/internal/config"
	"xrayrag/internal/embedding"
	"xrayrag/internal/embedding/local"
	"xrayrag/internal/embedding/openai"
	"xrayrag/internal/retrieval"
	"xrayrag/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	topK := flag.Int("k", 0, "Number of results (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	if *topK > 0 {
		cfg.Search.TopK = *topK
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		fatal(logger, "failed to create embedder", err)
	}

	engine := retrieval.New(emb, retrieval.Options{
		DataPath:     cfg.Index.DataPath,
		IndexPath:    cfg.Index.IndexPath,
		MetadataPath: cfg.Index.MetadataPath,
		BatchSize:    cfg.Index.BatchSize,
		Logger:       logger,
		Progress: func(done, total int) {
			logger.Info("embedding corpus", "done", done, "total", total)
		},
	})

	ctx := context.Background()
	args := flag.Args()
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "build":
		if err := engine.Rebuild(ctx); err != nil {
			fatal(logger, "build failed", err)
		}
	case "search":
		if len(args) < 2 {
			usage()
		}
		if err := engine.EnsureReady(ctx); err != nil {
			fatal(logger, "index not ready", err)
		}
		runSearch(ctx, engine, strings.Join(args[1:], " "), cfg.Search.TopK)
	case "analyze":
		if len(args) != 2 {
			usage()
		}
		if err := engine.EnsureReady(ctx); err != nil {
			fatal(logger, "index not ready", err)
		}
		runAnalyze(ctx, engine, args[1], cfg.Search.TopK)
	case "":
		if err := engine.EnsureReady(ctx); err != nil {
			fatal(logger, "index not ready", err)
		}
		m := tui.New(engine, cfg.Search.TopK)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			fatal(logger, "tui failed", err)
		}
	default:
		usage()
	}
}

func buildEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "local", "":
		return local.New(cfg.Embedder.Dimension), nil
	case "openai":
		ocfg := openai.Config{}
		if o := cfg.Embedder.OpenAI; o != nil {
			ocfg = openai.Config{
				BaseURL:           o.BaseURL,
				APIKeyEnv:         o.APIKeyEnv,
				Model:             o.Model,
				Timeout:           time.Duration(o.TimeoutSecs) * time.Second,
				RequestsPerMinute: o.RequestsPerMinute,
			}
		}
		return openai.New(ocfg)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func usage() {
	fmt.Println("Usage: xrayrag [-config=config.yaml] [-k=5] [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  build             rebuild the index from the corpus")
	fmt.Println("  search <query>    print ranked similar reports")
	fmt.Println("  analyze <image>   derive a query from an X-ray image and print a report")
	fmt.Println("  (none)            start the interactive shell")
	os.Exit(1)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
