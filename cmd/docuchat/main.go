package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tsadoc/docuchat/internal/analysis"
	"github.com/tsadoc/docuchat/internal/api"
	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/llm"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("docuchat: .env file not loaded", "error", err)
	} else {
		logger.Info("docuchat: environment loaded from .env")
	}

	addrDefault := ":8080"
	if env := strings.TrimSpace(os.Getenv("DOCUCHAT_ADDR")); env != "" {
		addrDefault = env
	}
	addr := flag.String("addr", addrDefault, "listen address")
	catalogPath := flag.String("catalog", "", "path to the SQLite catalog database (overrides CATALOG_PATH)")
	concurrency := flag.Int("batch-concurrency", 0, "parallel question completions per analysis batch (0 uses the default)")
	flag.Parse()

	logger.Info("docuchat: startup initiated", "addr", *addr)

	store, err := catalog.Open(strings.TrimSpace(*catalogPath))
	if err != nil {
		logger.Error("docuchat: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := llm.NewProvider()
	logger.Info("docuchat: llm provider ready", "provider", provider.Name())

	var opts []analysis.Option
	if *concurrency > 0 {
		opts = append(opts, analysis.WithConcurrency(*concurrency))
	}
	engine := analysis.NewEngine(store, store, provider, opts...)

	server, err := api.NewServer(store, provider, engine)
	if err != nil {
		logger.Error("docuchat: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("docuchat: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("docuchat: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
