package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhhandel/kuhhandel/pkg/game"
	"github.com/kuhhandel/kuhhandel/pkg/server/internal/db"
)

// memoryLedger implements Ledger for testing
type memoryLedger struct {
	mu        sync.RWMutex
	transfers map[string][]*db.Transfer
	bonuses   map[string][]*db.Bonus
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		transfers: make(map[string][]*db.Transfer),
		bonuses:   make(map[string][]*db.Bonus),
	}
}

func (m *memoryLedger) RecordTransfer(gameID, kind, payerID, payeeID string, owed, moved, cards int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[gameID] = append(m.transfers[gameID], &db.Transfer{
		ID:      int64(len(m.transfers[gameID]) + 1),
		GameID:  gameID,
		Kind:    kind,
		PayerID: payerID,
		PayeeID: payeeID,
		Owed:    owed,
		Moved:   moved,
		Cards:   cards,
	})
	return nil
}

func (m *memoryLedger) RecordBonus(gameID string, draw, amount, players int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonuses[gameID] = append(m.bonuses[gameID], &db.Bonus{
		ID:      int64(len(m.bonuses[gameID]) + 1),
		GameID:  gameID,
		Draw:    draw,
		Amount:  amount,
		Players: players,
	})
	return nil
}

func (m *memoryLedger) GameTransfers(gameID string) ([]*db.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*db.Transfer(nil), m.transfers[gameID]...), nil
}

func (m *memoryLedger) GameBonuses(gameID string) ([]*db.Bonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*db.Bonus(nil), m.bonuses[gameID]...), nil
}

func (m *memoryLedger) PlayerVolume(playerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, transfers := range m.transfers {
		for _, t := range transfers {
			if t.PayerID == playerID {
				total += t.Moved
			}
		}
	}
	return total, nil
}

func (m *memoryLedger) Close() error { return nil }

func setupTestServer(t *testing.T) (*Server, *memoryLedger) {
	t.Helper()
	ledger := newMemoryLedger()
	srv := NewServer(&Config{DB: ledger})
	t.Cleanup(srv.Shutdown)
	return srv, ledger
}

func TestCreateGameJoinsHost(t *testing.T) {
	srv, _ := setupTestServer(t)

	session, err := srv.CreateGame("host1", "Helga")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID())
	assert.Equal(t, "host1", session.HostID())
	assert.Equal(t, game.PhaseLobby, session.Phase())

	snap := session.Snapshot()
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Helga", snap.Players[0].Name)

	got, err := srv.GetGame(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = srv.CreateGame("", "")
	assert.Error(t, err)
}

func TestGetGameNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)
	_, err := srv.GetGame("nope")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestDeleteGameHostOnly(t *testing.T) {
	srv, _ := setupTestServer(t)
	session, err := srv.CreateGame("host1", "Helga")
	require.NoError(t, err)

	err = srv.DeleteGame(session.ID(), "intruder")
	assert.ErrorIs(t, err, game.ErrNotHost)

	require.NoError(t, srv.DeleteGame(session.ID(), "host1"))
	_, err = srv.GetGame(session.ID())
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestListGames(t *testing.T) {
	srv, _ := setupTestServer(t)
	for i := 0; i < 3; i++ {
		_, err := srv.CreateGame(fmt.Sprintf("host%d", i), "")
		require.NoError(t, err)
	}
	assert.Len(t, srv.ListGames(), 3)
}

// doJSON posts body to path and decodes the response into out.
func doJSON(t *testing.T, handler http.Handler, method, path string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	} else {
		buf.WriteString("{}")
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 && rec.Code != http.StatusNoContent {
		// Zero the destination first: fields omitted from the response
		// (omitempty) must not retain values from a previous decode.
		v := reflect.ValueOf(out).Elem()
		v.Set(reflect.Zero(v.Type()))
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out), "body: %s", rec.Body.String())
	}
	return rec
}

func TestHTTPFullAuctionFlow(t *testing.T) {
	srv, ledger := setupTestServer(t)
	handler := srv.Handler()

	var snap game.SessionSnapshot
	rec := doJSON(t, handler, "POST", "/games", actionRequest{PlayerID: "alice", Name: "Alice"}, &snap)
	require.Equal(t, http.StatusCreated, rec.Code)
	gameID := snap.ID
	require.NotEmpty(t, gameID)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/join", actionRequest{PlayerID: "bob", Name: "Bob"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, snap.Players, 2)

	// Only the host may start.
	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/start", actionRequest{PlayerID: "bob"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/start", actionRequest{PlayerID: "alice"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.PhaseAuction, snap.Phase)
	assert.Equal(t, "alice", snap.CurrentTurnPlayerID)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/start", actionRequest{PlayerID: "alice"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, snap.Auction)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/bid", actionRequest{PlayerID: "bob", Amount: 50}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, snap.Auction.CurrentBid)

	// A non-multiple of ten is rejected without disturbing the bid.
	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/bid", actionRequest{PlayerID: "bob", Amount: 55}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/end", actionRequest{}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.AuctionStateMatchBid, snap.AuctionState)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/match", actionRequest{PlayerID: "alice"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, snap.Auction.Summary)
	assert.Equal(t, game.SummaryMatchedBid, snap.Auction.Summary.Kind)

	// Alice sees her own hand; Bob's money stays hidden.
	for _, p := range snap.Players {
		switch p.ID {
		case "alice":
			assert.False(t, p.MoneyHidden)
			assert.Len(t, p.Animals, 1)
		case "bob":
			assert.True(t, p.MoneyHidden)
			assert.Zero(t, p.TotalMoney)
		}
	}

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/clear", actionRequest{PlayerID: "alice"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.AuctionStateNone, snap.AuctionState)
	assert.Equal(t, "bob", snap.CurrentTurnPlayerID)

	// The settlement reaches the ledger asynchronously.
	require.Eventually(t, func() bool {
		transfers, err := ledger.GameTransfers(gameID)
		return err == nil && len(transfers) == 1
	}, 2*time.Second, 10*time.Millisecond)

	transfers, err := ledger.GameTransfers(gameID)
	require.NoError(t, err)
	assert.Equal(t, string(game.SummaryMatchedBid), transfers[0].Kind)
	assert.Equal(t, "alice", transfers[0].PayerID)
	assert.Equal(t, "bob", transfers[0].PayeeID)
	assert.Equal(t, 50, transfers[0].Owed)

	var ledgerResp struct {
		Transfers []*db.Transfer `json:"transfers"`
		Bonuses   []*db.Bonus    `json:"bonuses"`
	}
	rec = doJSON(t, handler, "GET", "/games/"+gameID+"/ledger", nil, &ledgerResp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ledgerResp.Transfers, 1)

	// Alice paid $50 with a single card, so her lifetime volume is $50.
	var vol struct {
		PlayerID string `json:"playerId"`
		Volume   int    `json:"volume"`
	}
	rec = doJSON(t, handler, "GET", "/players/alice/volume", nil, &vol)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, vol.Volume)

	rec = doJSON(t, handler, "GET", "/players/stranger/volume", nil, &vol)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, vol.Volume)
}

func TestHTTPAnonymousViewsRedacted(t *testing.T) {
	srv, _ := setupTestServer(t)
	handler := srv.Handler()

	var snap game.SessionSnapshot
	doJSON(t, handler, "POST", "/games", actionRequest{PlayerID: "alice", Name: "Alice"}, &snap)
	gameID := snap.ID
	doJSON(t, handler, "POST", "/games/"+gameID+"/join", actionRequest{PlayerID: "bob", Name: "Bob"}, nil)
	doJSON(t, handler, "POST", "/games/"+gameID+"/start", actionRequest{PlayerID: "alice"}, nil)
	doJSON(t, handler, "POST", "/games/"+gameID+"/auction/start", actionRequest{PlayerID: "alice"}, nil)

	// Money is face down: the listing names players but shows no hand.
	var listing []game.SessionSnapshot
	rec := doJSON(t, handler, "GET", "/games", nil, &listing)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listing, 1)
	for _, p := range listing[0].Players {
		assert.True(t, p.MoneyHidden, "listing exposed %s's money", p.Name)
		assert.Empty(t, p.Money)
		assert.Zero(t, p.TotalMoney)
	}

	// A body without a playerId acts anonymously, it does not see everything.
	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/end", actionRequest{}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range snap.Players {
		assert.True(t, p.MoneyHidden, "action response exposed %s's money", p.Name)
		assert.Empty(t, p.Money)
	}

	// Same for a poll without a playerId.
	rec = doJSON(t, handler, "GET", "/games/"+gameID, nil, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range snap.Players {
		assert.True(t, p.MoneyHidden)
		assert.Empty(t, p.Money)
	}
}

func TestHTTPBluffFlow(t *testing.T) {
	srv, _ := setupTestServer(t)
	handler := srv.Handler()

	var snap game.SessionSnapshot
	doJSON(t, handler, "POST", "/games", actionRequest{PlayerID: "alice", Name: "Alice"}, &snap)
	gameID := snap.ID
	doJSON(t, handler, "POST", "/games/"+gameID+"/join", actionRequest{PlayerID: "bob", Name: "Bob"}, nil)
	doJSON(t, handler, "POST", "/games/"+gameID+"/start", actionRequest{PlayerID: "alice"}, nil)
	doJSON(t, handler, "POST", "/games/"+gameID+"/auction/start", actionRequest{PlayerID: "alice"}, nil)

	// Bob holds $90; a $200 bid is a bluff.
	rec := doJSON(t, handler, "POST", "/games/"+gameID+"/auction/bid", actionRequest{PlayerID: "bob", Amount: 200}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, snap.Auction.Summary)
	assert.Equal(t, game.SummaryBluffDetected, snap.Auction.Summary.Kind)
	assert.Equal(t, []string{"bob"}, snap.Auction.Disqualified)

	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/restart", actionRequest{PlayerID: "alice"}, &snap)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.AuctionStateInProgress, snap.AuctionState)
	assert.Equal(t, []string{"bob"}, snap.Auction.Disqualified)

	// The bluffer stays locked out for this auction.
	rec = doJSON(t, handler, "POST", "/games/"+gameID+"/auction/bid", actionRequest{PlayerID: "bob", Amount: 50}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHTTPErrorMapping(t *testing.T) {
	srv, _ := setupTestServer(t)
	handler := srv.Handler()

	rec := doJSON(t, handler, "GET", "/games/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, "POST", "/games/missing/auction/bid", actionRequest{PlayerID: "x", Amount: 10}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var snap game.SessionSnapshot
	doJSON(t, handler, "POST", "/games", actionRequest{PlayerID: "alice", Name: "Alice"}, &snap)

	// Ending an auction that was never opened.
	rec = doJSON(t, handler, "POST", "/games/"+snap.ID+"/auction/end", actionRequest{}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Starting with one player.
	rec = doJSON(t, handler, "POST", "/games/"+snap.ID+"/start", actionRequest{PlayerID: "alice"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHTTPStats(t *testing.T) {
	srv, _ := setupTestServer(t)
	handler := srv.Handler()

	doJSON(t, handler, "POST", "/games", actionRequest{PlayerID: "alice", Name: "Alice"}, nil)

	var stats statsResponse
	rec := doJSON(t, handler, "GET", "/debug/stats", nil, &stats)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stats.Games)
	assert.Greater(t, stats.Goroutines, 0)
}
