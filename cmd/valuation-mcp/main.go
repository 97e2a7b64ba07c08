package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tokenized_valuation/pkg/app"
	"tokenized_valuation/pkg/core/config"
	"tokenized_valuation/pkg/core/logger"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Path to config file")
	httpAddr := flag.String("http", "", "Serve Streamable HTTP on this address instead of stdio")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// logger writes to stderr; stdout carries the stdio transport
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	mcpServer := a.MCPServer(version)

	if *httpAddr != "" {
		httpServer := server.NewStreamableHTTPServer(mcpServer, server.WithStateLess(true))
		log.Info("starting MCP Streamable HTTP", zap.String("addr", *httpAddr))
		if err := httpServer.Start(*httpAddr); err != nil {
			log.Error("http server error", zap.Error(err))
		}
		return
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error("stdio server error", zap.Error(err))
	}
}
