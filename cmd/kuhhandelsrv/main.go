package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kuhhandel/kuhhandel/internal/logging"
	"github.com/kuhhandel/kuhhandel/pkg/server"
)

func main() {
	var (
		configPath string
		dbPath     string
		host       string
		port       int
		portFile   string
		logFile    string
		debugLevel string
	)
	flag.StringVar(&configPath, "config", "", "Path to yaml config file")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite ledger file (created if missing)")
	flag.StringVar(&host, "host", "", "Host to listen on")
	flag.IntVar(&port, "port", -1, "Port to listen on (0 for random free port)")
	flag.StringVar(&portFile, "portfile", "", "If set, write selected port to this file")
	flag.StringVar(&logFile, "logfile", "", "Log file path (rotated; empty for stderr only)")
	flag.StringVar(&debugLevel, "debuglevel", "", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	cfg, err := server.LoadAppConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// Flags override the file.
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if host != "" {
		cfg.Host = host
	}
	if port >= 0 {
		cfg.Port = port
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if debugLevel != "" {
		cfg.DebugLevel = debugLevel
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:     cfg.LogFile,
		DebugLevel:  cfg.DebugLevel,
		MaxLogFiles: cfg.MaxLogFiles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()
	log := logBackend.Logger("SRV")

	ledger, err := server.NewLedger(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init ledger: %v\n", err)
		os.Exit(1)
	}

	srv := server.NewServer(&server.Config{
		DB:          ledger,
		Log:         log,
		LogBackend:  logBackend,
		MaxPlayers:  cfg.MaxPlayers,
		BidWindow:   time.Duration(cfg.BidWindowSeconds) * time.Second,
		MatchWindow: time.Duration(cfg.MatchWindowSeconds) * time.Second,
	})
	defer srv.Shutdown()

	lis, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
		os.Exit(1)
	}

	// Optionally write chosen port
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		_ = os.WriteFile(portFile, []byte(p), 0600)
	}

	log.Infof("Listening on %s (ledger: %s)", lis.Addr(), cfg.DBPath)
	if err := http.Serve(lis, srv.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
		os.Exit(1)
	}
}
