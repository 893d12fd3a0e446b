package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/kuhhandel/kuhhandel/internal/logging"
	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// Config holds the server configuration
type Config struct {
	DB         Ledger
	Log        slog.Logger
	LogBackend *logging.LogBackend

	// Per-game defaults. Zero values fall back to the engine defaults.
	MaxPlayers  int
	BidWindow   time.Duration
	MatchWindow time.Duration
}

// Server coordinates all running game sessions. It owns the registry map and
// nothing else: per-game state lives in the sessions, which take their own
// locks. The server lock is never held across a session call.
type Server struct {
	log        slog.Logger
	logBackend *logging.LogBackend
	db         Ledger
	cfg        *Config

	mu    sync.RWMutex
	games map[string]*game.Session

	eventProcessor *EventProcessor
}

// NewServer creates a new game server
func NewServer(cfg *Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}

	s := &Server{
		log:        log,
		logBackend: cfg.LogBackend,
		db:         cfg.DB,
		cfg:        cfg,
		games:      make(map[string]*game.Session),
	}

	// Queue and worker sizing: auctions produce a handful of events per
	// operation, so a small pool keeps up comfortably.
	s.eventProcessor = NewEventProcessor(s, 1000, 4)
	s.eventProcessor.Start()

	return s
}

// Shutdown stops the event processor and closes the ledger.
func (s *Server) Shutdown() {
	s.eventProcessor.Stop()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Failed to close ledger: %v", err)
		}
	}
}

// gameLogger returns the logger sessions run with.
func (s *Server) gameLogger() slog.Logger {
	if s.logBackend != nil {
		return s.logBackend.Logger("GAME")
	}
	return s.log
}

// CreateGame creates a new session hosted by hostID and joins the host to it.
func (s *Server) CreateGame(hostID, hostName string) (*game.Session, error) {
	if hostID == "" {
		return nil, fmt.Errorf("host id is required")
	}
	if hostName == "" {
		hostName = hostID
	}

	gameID := uuid.New().String()
	session := game.NewSession(game.SessionConfig{
		ID:          gameID,
		HostID:      hostID,
		MaxPlayers:  s.cfg.MaxPlayers,
		BidWindow:   s.cfg.BidWindow,
		MatchWindow: s.cfg.MatchWindow,
		Log:         s.gameLogger(),
	})
	session.SetEventPublisher(func(event, gameID string, payload interface{}) {
		s.eventProcessor.PublishEvent(&GameEvent{
			Name:      event,
			GameID:    gameID,
			Payload:   payload,
			Timestamp: time.Now(),
		})
	})

	if err := session.Join(hostID, hostName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[gameID] = session
	s.mu.Unlock()

	s.log.Infof("Created game %s hosted by %s", gameID, hostID)
	return session, nil
}

// GetGame returns the session with the given id.
func (s *Server) GetGame(gameID string) (*game.Session, error) {
	s.mu.RLock()
	session, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return session, nil
}

// ListGames returns an anonymous-viewer snapshot of every registered
// session. Money is played face down, so the listing never exposes a hand.
func (s *Server) ListGames() []game.SessionSnapshot {
	s.mu.RLock()
	sessions := make([]*game.Session, 0, len(s.games))
	for _, session := range s.games {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	// Snapshots are taken outside the registry lock.
	snaps := make([]game.SessionSnapshot, 0, len(sessions))
	for _, session := range sessions {
		snaps = append(snaps, session.SnapshotFor(""))
	}
	return snaps
}

// DeleteGame removes a session. Only the host may delete it; an emptied
// lobby may be deleted by anyone since no host remains to object.
func (s *Server) DeleteGame(gameID, requesterID string) error {
	session, err := s.GetGame(gameID)
	if err != nil {
		return err
	}
	if !session.IsEmpty() && requesterID != session.HostID() {
		return game.ErrNotHost
	}

	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()

	session.SetEventPublisher(nil)
	s.log.Infof("Deleted game %s (requested by %s)", gameID, requesterID)
	return nil
}
