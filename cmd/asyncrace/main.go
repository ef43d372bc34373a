package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/asyncrace/asyncrace/internal/app"
	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/logger"
)

var version = "dev"

func main() {
	addr := flag.String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	httpLog := flag.Bool("httplog", false, "Log every HTTP request")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `asyncrace - async race coordination server

Races are created and managed through the HTTP API; racers submit
finish times on their own schedule and leaderboards stay hidden until
a racer has posted their own result. Configuration comes from a .env
file and environment variables; flags override both.

Usage:
  asyncrace [options]

Options:
  -addr string     Listen address (default ":8090")
  -db string       SQLite database path (default "asyncrace.db")
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -httplog         Log every HTTP request
  -version         Show version and exit
  -help            Show this help message
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("asyncrace %s\n", version)
		os.Exit(0)
	}

	cfg := config.Load()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	appLog := logger.New()
	appLog.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if *httpLog {
		appLog.EnableHTTPLogging()
	}

	a, err := app.New(appLog, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	if err := a.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
