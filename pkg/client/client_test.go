package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhhandel/kuhhandel/pkg/game"
	"github.com/kuhhandel/kuhhandel/pkg/server"
)

func testClients(t *testing.T) (*Client, *Client) {
	t.Helper()
	srv := server.NewServer(&server.Config{})
	t.Cleanup(srv.Shutdown)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	alice, err := New(Config{ServerAddr: ts.URL, PlayerID: "alice", PlayerName: "Alice"})
	require.NoError(t, err)
	bob, err := New(Config{ServerAddr: ts.URL, PlayerID: "bob", PlayerName: "Bob"})
	require.NoError(t, err)
	return alice, bob
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{PlayerID: "x"})
	assert.Error(t, err)
	_, err = New(Config{ServerAddr: "http://localhost:1"})
	assert.Error(t, err)
}

func TestClientAuctionRoundTrip(t *testing.T) {
	alice, bob := testClients(t)
	ctx := context.Background()

	snap, err := alice.CreateGame(ctx)
	require.NoError(t, err)
	gameID := snap.ID

	snap, err = bob.JoinGame(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, snap.Players, 2)

	games, err := bob.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	snap, err = alice.StartGame(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseAuction, snap.Phase)

	snap, err = alice.StartAuction(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, snap.Auction)
	assert.Equal(t, game.AuctionStateInProgress, snap.AuctionState)

	snap, err = bob.PlaceBid(ctx, gameID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, snap.Auction.CurrentBid)
	assert.Equal(t, "bob", snap.Auction.CurrentBidderID)

	// The bidder's poll hides the auctioneer's money.
	snap, err = bob.GetGame(ctx, gameID)
	require.NoError(t, err)
	for _, p := range snap.Players {
		if p.ID == "alice" {
			assert.True(t, p.MoneyHidden)
		}
	}

	snap, err = alice.EndAuction(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, game.AuctionStateMatchBid, snap.AuctionState)

	// Letting the match lapse settles to the bidder.
	snap, err = alice.EndAuction(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, snap.Auction.Summary)
	assert.Equal(t, game.SummaryNormalWin, snap.Auction.Summary.Kind)

	snap, err = alice.ClearSummary(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, game.AuctionStateNone, snap.AuctionState)
	assert.Equal(t, "bob", snap.CurrentTurnPlayerID)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	alice, bob := testClients(t)
	ctx := context.Background()

	_, err := alice.GetGame(ctx, "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	snap, err := alice.CreateGame(ctx)
	require.NoError(t, err)

	// Bob never joined; starting as him is forbidden.
	_, err = bob.StartGame(ctx, snap.ID)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}
