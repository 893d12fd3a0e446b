package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/kuhhandel/kuhhandel/internal/logging"
	"github.com/kuhhandel/kuhhandel/pkg/client"
	"github.com/kuhhandel/kuhhandel/pkg/ui"
)

func main() {
	var (
		serverAddr string
		playerID   string
		playerName string
		logFile    string
		debugLevel string
	)
	flag.StringVar(&serverAddr, "server", "http://127.0.0.1:8080", "Game server base URL")
	flag.StringVar(&playerID, "id", "", "Player id (random if empty)")
	flag.StringVar(&playerName, "name", "", "Display name")
	flag.StringVar(&logFile, "logfile", "", "Log file path (rotated; empty for stderr only)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if playerID == "" {
		playerID = uuid.New().String()
	}
	if playerName == "" {
		playerName = fmt.Sprintf("player-%s", playerID[:8])
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    logFile,
		DebugLevel: debugLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()
	log := logBackend.Logger("CLI")

	c, err := client.New(client.Config{
		ServerAddr: serverAddr,
		PlayerID:   playerID,
		PlayerName: playerName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infof("Connecting to %s as %s (%s)", serverAddr, playerName, playerID)

	p := tea.NewProgram(ui.NewModel(ctx, c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
		os.Exit(1)
	}
}
