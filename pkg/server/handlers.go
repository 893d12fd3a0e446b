package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// actionRequest is the common body for all mutating game endpoints.
type actionRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the HTTP API. Clients poll GET /games/{id}; every poll
// evaluates the advisory auction deadlines, which is the only place expired
// windows get acted on.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("DELETE /games/{id}", s.handleDeleteGame)
	mux.HandleFunc("GET /games/{id}/ledger", s.handleGameLedger)
	mux.HandleFunc("GET /players/{id}/volume", s.handlePlayerVolume)

	mux.HandleFunc("POST /games/{id}/join", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.Join(req.PlayerID, req.Name)
	}))
	mux.HandleFunc("POST /games/{id}/leave", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.Leave(req.PlayerID)
	}))
	mux.HandleFunc("POST /games/{id}/start", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.Start(req.PlayerID)
	}))
	mux.HandleFunc("POST /games/{id}/auction/start", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.StartAuction(req.PlayerID)
	}))
	mux.HandleFunc("POST /games/{id}/auction/bid", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.PlaceBid(req.PlayerID, req.Amount)
	}))
	mux.HandleFunc("POST /games/{id}/auction/end", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.EndAuction()
	}))
	mux.HandleFunc("POST /games/{id}/auction/match", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.MatchBid(req.PlayerID)
	}))
	mux.HandleFunc("POST /games/{id}/auction/clear", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.ClearSummary()
	}))
	mux.HandleFunc("POST /games/{id}/auction/restart", s.gameAction(func(g *game.Session, req actionRequest) error {
		return g.RestartAfterBluff()
	}))

	mux.HandleFunc("GET /debug/stats", s.handleStats)

	return mux
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	session, err := s.CreateGame(req.PlayerID, req.Name)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, session.SnapshotFor(req.PlayerID))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ListGames())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := s.GetGame(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if fired, err := session.EvaluateDeadlines(time.Now()); err != nil {
		s.log.Errorf("Deadline evaluation failed for game %s: %v", session.ID(), err)
	} else if fired {
		s.log.Debugf("Deadline fired for game %s", session.ID())
	}

	writeJSON(w, http.StatusOK, session.SnapshotFor(r.URL.Query().Get("playerId")))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	requester := r.URL.Query().Get("playerId")
	if err := s.DeleteGame(r.PathValue("id"), requester); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGameLedger(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if _, err := s.GetGame(gameID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if s.db == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no ledger configured"))
		return
	}

	transfers, err := s.db.GameTransfers(gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	bonuses, err := s.db.GameBonuses(gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"bonuses":   bonuses,
	})
}

// handlePlayerVolume reports the total a player has paid out across all
// recorded settlements, from the ledger.
func (s *Server) handlePlayerVolume(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no ledger configured"))
		return
	}
	playerID := r.PathValue("id")
	volume, err := s.db.PlayerVolume(playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playerId": playerID,
		"volume":   volume,
	})
}

// gameAction wraps the shared decode/lookup/act/snapshot flow of the mutating
// endpoints. The response is the post-action snapshot redacted for the actor;
// a request without a playerId gets the anonymous view.
func (s *Server) gameAction(act func(g *game.Session, req actionRequest) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		session, err := s.GetGame(r.PathValue("id"))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if err := act(session, req); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, session.SnapshotFor(req.PlayerID))
	}
}

// statusFor maps engine sentinels to HTTP status codes. Unknown errors are
// treated as bad requests rather than server faults: the engine only fails
// on caller mistakes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound

	case errors.Is(err, game.ErrNotHost),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrAuctioneerBid),
		errors.Is(err, game.ErrDisqualified):
		return http.StatusForbidden

	case errors.Is(err, game.ErrGameFull),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrAuctionOpen),
		errors.Is(err, game.ErrNoAuction),
		errors.Is(err, game.ErrWrongAuctionState),
		errors.Is(err, game.ErrNotBluff):
		return http.StatusConflict

	case errors.Is(err, game.ErrInvalidBid),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrNoAnimalsLeft),
		errors.Is(err, game.ErrUnpayable):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
