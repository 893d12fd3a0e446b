package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kuhhandel/kuhhandel/internal/logging"
	"github.com/kuhhandel/kuhhandel/pkg/bot"
	"github.com/kuhhandel/kuhhandel/pkg/client"
)

func main() {
	var (
		serverAddr string
		gameID     string
		playerID   string
		playerName string
		maxBid     int
		pollMs     int
		debugLevel string
	)
	flag.StringVar(&serverAddr, "server", "http://127.0.0.1:8080", "Game server base URL")
	flag.StringVar(&gameID, "game", "", "Game id to join (required)")
	flag.StringVar(&playerID, "id", "", "Player id (random if empty)")
	flag.StringVar(&playerName, "name", "", "Display name")
	flag.IntVar(&maxBid, "maxbid", 200, "Highest bid the bot will place")
	flag.IntVar(&pollMs, "pollms", 1000, "Poll interval in milliseconds")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if gameID == "" {
		fmt.Fprintln(os.Stderr, "-game is required")
		os.Exit(1)
	}
	if playerID == "" {
		playerID = uuid.New().String()
	}
	if playerName == "" {
		playerName = fmt.Sprintf("bot-%s", playerID[:8])
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: debugLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()
	log := logBackend.Logger("BOT")

	c, err := client.New(client.Config{
		ServerAddr: serverAddr,
		PlayerID:   playerID,
		PlayerName: playerName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bot.New(c, bot.Config{
		GameID:       gameID,
		MaxBid:       maxBid,
		PollInterval: time.Duration(pollMs) * time.Millisecond,
		Log:          log,
	})

	log.Infof("Bot %s joining game %s on %s", playerName, gameID, serverAddr)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "bot error: %v\n", err)
		os.Exit(1)
	}
}
