// Package client is a thin HTTP wrapper around the game server API. It holds
// the caller's identity and decodes server snapshots; all game rules live
// server-side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// Config holds the client configuration.
type Config struct {
	// ServerAddr is the base URL of the game server, e.g.
	// "http://127.0.0.1:8080".
	ServerAddr string
	PlayerID   string
	PlayerName string
	// Timeout bounds each request. Zero means 10 seconds.
	Timeout time.Duration
}

// Client talks to one game server on behalf of one player.
type Client struct {
	base     string
	playerID string
	name     string
	http     *http.Client
}

// APIError is a non-2xx response decoded from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.ServerAddr == "" {
		return nil, fmt.Errorf("server address is required")
	}
	if cfg.PlayerID == "" {
		return nil, fmt.Errorf("player id is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:     strings.TrimRight(cfg.ServerAddr, "/"),
		playerID: cfg.PlayerID,
		name:     cfg.PlayerName,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// PlayerID returns the identity this client acts as.
func (c *Client) PlayerID() string { return c.playerID }

type actionBody struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

// do runs one request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateGame creates a game hosted by this player and returns its snapshot.
func (c *Client) CreateGame(ctx context.Context) (game.SessionSnapshot, error) {
	var snap game.SessionSnapshot
	err := c.do(ctx, "POST", "/games", actionBody{PlayerID: c.playerID, Name: c.name}, &snap)
	return snap, err
}

// ListGames returns a snapshot of every game on the server.
func (c *Client) ListGames(ctx context.Context) ([]game.SessionSnapshot, error) {
	var snaps []game.SessionSnapshot
	err := c.do(ctx, "GET", "/games", nil, &snaps)
	return snaps, err
}

// GetGame polls one game. The server evaluates expired auction deadlines on
// every poll, so a polling client is all it takes to keep a game moving.
func (c *Client) GetGame(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	var snap game.SessionSnapshot
	path := fmt.Sprintf("/games/%s?playerId=%s", gameID, url.QueryEscape(c.playerID))
	err := c.do(ctx, "GET", path, nil, &snap)
	return snap, err
}

// JoinGame joins this player to the game.
func (c *Client) JoinGame(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "join", 0)
}

// LeaveGame leaves a lobby.
func (c *Client) LeaveGame(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "leave", 0)
}

// StartGame starts the game. Host only.
func (c *Client) StartGame(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "start", 0)
}

// StartAuction draws an animal and opens bidding on it.
func (c *Client) StartAuction(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/start", 0)
}

// PlaceBid bids amount on the open auction.
func (c *Client) PlaceBid(ctx context.Context, gameID string, amount int) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/bid", amount)
}

// EndAuction closes the bidding or match window.
func (c *Client) EndAuction(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/end", 0)
}

// MatchBid matches the highest bid as the auctioneer.
func (c *Client) MatchBid(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/match", 0)
}

// ClearSummary acknowledges the auction summary and passes the turn.
func (c *Client) ClearSummary(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/clear", 0)
}

// RestartAfterBluff reopens bidding after a detected bluff.
func (c *Client) RestartAfterBluff(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	return c.action(ctx, gameID, "auction/restart", 0)
}

func (c *Client) action(ctx context.Context, gameID, op string, amount int) (game.SessionSnapshot, error) {
	var snap game.SessionSnapshot
	path := fmt.Sprintf("/games/%s/%s", gameID, op)
	err := c.do(ctx, "POST", path, actionBody{PlayerID: c.playerID, Name: c.name, Amount: amount}, &snap)
	return snap, err
}
