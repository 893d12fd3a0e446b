// Package bot is an automated player. It polls the server like any other
// client and reacts to whatever the snapshot shows, which doubles as a
// fill-in opponent and a soak test for the API.
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/decred/slog"

	"github.com/kuhhandel/kuhhandel/pkg/client"
	"github.com/kuhhandel/kuhhandel/pkg/game"
)

// Config holds the bot configuration.
type Config struct {
	// GameID is the game to join. The bot never creates games.
	GameID string

	// MaxBid caps what the bot is willing to pay for any animal.
	MaxBid int

	// PollInterval paces the snapshot polling. Zero means one second.
	PollInterval time.Duration

	Log slog.Logger
}

// Bot plays one game on one server.
type Bot struct {
	c   *client.Client
	cfg Config
	log slog.Logger
}

// New creates a bot around an existing client identity.
func New(c *client.Client, cfg Config) *Bot {
	if cfg.MaxBid == 0 {
		cfg.MaxBid = 200
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	return &Bot{c: c, cfg: cfg, log: cfg.Log}
}

// Run joins the game and plays until the game ends or ctx is canceled.
// Auction windows are closed by the server's deadline evaluation, so the bot
// only ever has to open auctions, bid, match and acknowledge summaries.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.c.JoinGame(ctx, b.cfg.GameID); err != nil {
		// Rejoining an already-started game is fine when the server still
		// knows us; anything else is fatal.
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			return err
		}
		b.log.Warnf("Join failed (%v), continuing as spectator until accepted", err)
	}

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		snap, err := b.c.GetGame(ctx, b.cfg.GameID)
		if err != nil {
			b.log.Warnf("Poll failed: %v", err)
			continue
		}
		if snap.Phase == game.PhaseEnded {
			b.log.Infof("Game %s ended", b.cfg.GameID)
			return nil
		}

		b.act(ctx, snap)
	}
}

// act performs at most one action per poll. Errors are logged and dropped:
// a raced action simply shows up as a changed snapshot next poll.
func (b *Bot) act(ctx context.Context, snap game.SessionSnapshot) {
	me := b.c.PlayerID()

	if snap.Auction == nil {
		if snap.Phase == game.PhaseAuction && snap.CurrentTurnPlayerID == me {
			b.log.Debugf("Opening auction in game %s", snap.ID)
			if _, err := b.c.StartAuction(ctx, b.cfg.GameID); err != nil {
				b.log.Warnf("StartAuction: %v", err)
			}
		}
		return
	}

	a := snap.Auction
	switch a.State {
	case game.AuctionStateInProgress:
		b.maybeBid(ctx, snap)

	case game.AuctionStateMatchBid:
		if a.AuctioneerID == me {
			b.maybeMatch(ctx, snap)
		}

	case game.AuctionStateSummary:
		// The auctioneer acknowledges; after a bluff it re-auctions instead,
		// so the card does not go unsold because of a lie.
		if a.AuctioneerID != me {
			return
		}
		if a.Summary != nil && a.Summary.Kind == game.SummaryBluffDetected {
			if _, err := b.c.RestartAfterBluff(ctx, b.cfg.GameID); err != nil {
				b.log.Warnf("RestartAfterBluff: %v", err)
			}
			return
		}
		if _, err := b.c.ClearSummary(ctx, b.cfg.GameID); err != nil {
			b.log.Warnf("ClearSummary: %v", err)
		}
	}
}

func (b *Bot) maybeBid(ctx context.Context, snap game.SessionSnapshot) {
	me := b.c.PlayerID()
	a := snap.Auction
	if a.AuctioneerID == me || a.CurrentBidderID == me {
		return
	}
	for _, id := range a.Disqualified {
		if id == me {
			return
		}
	}

	next := a.CurrentBid + 10
	if next > b.cfg.MaxBid || next > a.Card.Value {
		return
	}
	if next > b.biddable(snap) {
		return
	}

	b.log.Debugf("Bidding $%d on %s", next, a.Card.Label)
	if _, err := b.c.PlaceBid(ctx, b.cfg.GameID, next); err != nil {
		b.log.Warnf("PlaceBid: %v", err)
	}
}

func (b *Bot) maybeMatch(ctx context.Context, snap game.SessionSnapshot) {
	a := snap.Auction
	// Match when the card is worth more than the bid and the money is
	// there; otherwise let the window lapse and take the payment.
	if a.CurrentBid >= a.Card.Value || a.CurrentBid > b.biddable(snap) {
		return
	}
	b.log.Debugf("Matching $%d for %s", a.CurrentBid, a.Card.Label)
	if _, err := b.c.MatchBid(ctx, b.cfg.GameID); err != nil {
		b.log.Warnf("MatchBid: %v", err)
	}
}

// biddable sums the bot's own strictly positive money cards from the
// redacted snapshot.
func (b *Bot) biddable(snap game.SessionSnapshot) int {
	for _, p := range snap.Players {
		if p.ID != b.c.PlayerID() {
			continue
		}
		total := 0
		for _, c := range p.Money {
			if c.Value > 0 {
				total += c.Value
			}
		}
		return total
	}
	return 0
}
