package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"decentrashop/config"
	"decentrashop/core"
	"decentrashop/observability"
	"decentrashop/observability/logging"
	"decentrashop/rpc"
	"decentrashop/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("DECENTRASHOP_ENV"))
	logger := logging.Setup("decentrashopd", env, os.Getenv("DECENTRASHOP_LOG_FILE"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbPath := filepath.Join(cfg.Node.DataDir, "state")
	db, err := storage.NewLevelDB(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emitter := observability.NewEmitter(logger)
	node, err := core.NewNode(db, cfg, emitter)
	if err != nil {
		logger.Error("failed to start node", "error", err)
		os.Exit(1)
	}

	logger.Info("node ready",
		"network", cfg.Node.NetworkName,
		"rpc", cfg.Node.RPCAddress,
		"owner", fmt.Sprintf("0x%x", node.Owner()),
	)

	server := rpc.NewServer(node)
	server.SetRateLimit(cfg.Node.RPCRateLimitPerMinute, cfg.Node.RPCRateBurst)
	if err := server.Start(cfg.Node.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
