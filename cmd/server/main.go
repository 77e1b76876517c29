// Command server runs the matching engine behind the HTTP/WebSocket
// transport (§6), grounded on server/server.go's original main().
package main

import (
	"flag"
	"log/slog"
	"net/http"

	"matchcore/engine"
	"matchcore/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	logDir := flag.String("log-dir", "logs", "directory for rotated log files")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	cfg, err := transport.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger := transport.NewLogger(*logDir, *logLevel)

	eng := engine.NewMatchingEngine(engine.MatchingEngineConfig{
		Workers:           cfg.Workers,
		SubscriberBuffer:  cfg.SubscriberBuffer,
		DepthForSnapshots: cfg.DepthForSnapshots,
		Logger:            logger,
	})
	defer eng.Stop()

	srv := transport.NewServer(eng, cfg, logger)

	logger.Info("listening", slog.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
	}
}
