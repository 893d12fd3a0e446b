package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kuhhandel/kuhhandel/pkg/client"
	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// pollInterval paces the snapshot polling. The server acts on expired
// auction deadlines during these polls, so the interval also bounds how
// stale a timed-out auction can get.
const pollInterval = 800 * time.Millisecond

// Message types delivered to the UI model
type snapshotMsg game.SessionSnapshot
type gamesMsg []game.SessionSnapshot
type errorMsg error
type tickMsg time.Time

// CommandDispatcher dispatches commands from the UI to the game server
type CommandDispatcher struct {
	ctx context.Context
	c   *client.Client
}

// NewCommandDispatcher creates a new command dispatcher for the UI
func NewCommandDispatcher(ctx context.Context, c *client.Client) *CommandDispatcher {
	return &CommandDispatcher{ctx: ctx, c: c}
}

// snapshotCmd wraps a client call that yields a fresh snapshot.
func (d *CommandDispatcher) snapshotCmd(call func(context.Context) (game.SessionSnapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := call(d.ctx)
		if err != nil {
			return errorMsg(err)
		}
		return snapshotMsg(snap)
	}
}

func (d *CommandDispatcher) createGameCmd() tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.CreateGame(ctx)
	})
}

func (d *CommandDispatcher) listGamesCmd() tea.Cmd {
	return func() tea.Msg {
		games, err := d.c.ListGames(d.ctx)
		if err != nil {
			return errorMsg(err)
		}
		return gamesMsg(games)
	}
}

func (d *CommandDispatcher) joinGameCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.JoinGame(ctx, gameID)
	})
}

func (d *CommandDispatcher) startGameCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.StartGame(ctx, gameID)
	})
}

func (d *CommandDispatcher) pollCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.GetGame(ctx, gameID)
	})
}

func (d *CommandDispatcher) startAuctionCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.StartAuction(ctx, gameID)
	})
}

func (d *CommandDispatcher) placeBidCmd(gameID string, amount int) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.PlaceBid(ctx, gameID, amount)
	})
}

func (d *CommandDispatcher) endAuctionCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.EndAuction(ctx, gameID)
	})
}

func (d *CommandDispatcher) matchBidCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.MatchBid(ctx, gameID)
	})
}

func (d *CommandDispatcher) clearSummaryCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.ClearSummary(ctx, gameID)
	})
}

func (d *CommandDispatcher) restartAuctionCmd(gameID string) tea.Cmd {
	return d.snapshotCmd(func(ctx context.Context) (game.SessionSnapshot, error) {
		return d.c.RestartAfterBluff(ctx, gameID)
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
