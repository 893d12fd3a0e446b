package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kuhhandel/kuhhandel/pkg/game"
)

func (m Model) View() string {
	var b strings.Builder

	switch m.state {
	case stateMainMenu:
		b.WriteString(m.renderMenu())
	case stateGameList:
		b.WriteString(m.renderGameList())
	case stateJoinInput:
		b.WriteString(titleStyle.Render("Join Game"))
		b.WriteString("\n\n  Game id: " + focusedStyle.Render(m.input+"█"))
		b.WriteString(helpStyle.Render("\nenter: join • esc: back"))
	case stateInGame:
		b.WriteString(m.renderGame())
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()))
	}
	if m.message != "" {
		b.WriteString("\n" + messageStyle.Render(m.message))
	}
	return b.String()
}

func (m Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Kuhhandel"))
	b.WriteString("\n\n")
	for i, opt := range m.menuOptions {
		cursor := "  "
		style := blurredStyle
		if i == m.selectedItem {
			cursor = "> "
			style = focusedStyle
		}
		b.WriteString(cursor + style.Render(string(opt)) + "\n")
	}
	b.WriteString(helpStyle.Render("\n↑/↓: move • enter: select • q: quit"))
	return b.String()
}

func (m Model) renderGameList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Games"))
	b.WriteString("\n\n")
	if len(m.games) == 0 {
		b.WriteString(blurredStyle.Render("  No games on the server."))
	}
	for i, g := range m.games {
		cursor := "  "
		style := blurredStyle
		if i == m.selectedGame {
			cursor = "> "
			style = focusedStyle
		}
		line := fmt.Sprintf("%s  %s  %d players", shortID(g.ID), g.Phase, len(g.Players))
		b.WriteString(cursor + style.Render(line) + "\n")
	}
	b.WriteString(helpStyle.Render("\nenter: join • r: refresh • esc: back"))
	return b.String()
}

func (m Model) renderGame() string {
	var b strings.Builder

	title := fmt.Sprintf("Kuhhandel — game %s — %s", shortID(m.snap.ID), m.snap.Phase)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.renderPlayers())
	b.WriteString("\n")

	if a := m.snap.Auction; a != nil {
		b.WriteString(m.renderAuction(a))
	} else if m.snap.Phase == game.PhaseAuction {
		who := m.snap.CurrentTurnPlayerID
		if who == m.playerID {
			b.WriteString(messageStyle.Render("Your turn. Press 'a' to draw an animal and open the auction."))
		} else {
			b.WriteString(blurredStyle.Render(fmt.Sprintf("Waiting for %s to open an auction...", m.playerName(who))))
		}
	} else if m.snap.Phase == game.PhaseEnded {
		b.WriteString(summaryStyle.Render("The draw pile is exhausted. Game over!"))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Animals left in pile: %d\n", m.snap.AnimalsRemaining))

	if m.bidding {
		b.WriteString("\n  Bid amount: " + focusedStyle.Render(m.input+"█"))
		b.WriteString(helpStyle.Render("\nenter: place bid • esc: cancel"))
	} else {
		b.WriteString(m.renderHelp())
	}
	return b.String()
}

func (m Model) renderPlayers() string {
	disqualified := make(map[string]bool)
	if m.snap.Auction != nil {
		for _, id := range m.snap.Auction.Disqualified {
			disqualified[id] = true
		}
	}

	boxes := make([]string, 0, len(m.snap.Players))
	for _, p := range m.snap.Players {
		var lines []string
		name := p.Name
		if p.ID == m.snap.HostID {
			name += " ♛"
		}
		lines = append(lines, name)

		if p.MoneyHidden {
			lines = append(lines, fmt.Sprintf("%d money cards", p.MoneyCards))
		} else {
			lines = append(lines, fmt.Sprintf("$%d (%d cards)", p.TotalMoney, p.MoneyCards))
		}
		lines = append(lines, renderAnimals(p.Animals))

		style := playerBoxStyle
		switch {
		case disqualified[p.ID]:
			style = disqualifiedStyle
		case p.ID == m.playerID:
			style = youPlayerStyle
		case p.ID == m.snap.CurrentTurnPlayerID:
			style = turnPlayerStyle
		}
		boxes = append(boxes, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m Model) renderAuction(a *game.AuctionSnapshot) string {
	var b strings.Builder

	b.WriteString(animalCardStyle.Render(a.Card.Label))
	b.WriteString("  auctioned by " + m.playerName(a.AuctioneerID) + "\n")

	switch a.State {
	case game.AuctionStateInProgress:
		if a.CurrentBid > 0 {
			b.WriteString(bidStyle.Render(fmt.Sprintf("$%d by %s", a.CurrentBid, m.playerName(a.CurrentBidderID))))
		} else {
			b.WriteString(blurredStyle.Render("  No bids yet."))
		}
		b.WriteString("\n" + renderDeadline("Bidding closes", a.Deadline))

	case game.AuctionStateMatchBid:
		b.WriteString(bidStyle.Render(fmt.Sprintf("$%d by %s", a.CurrentBid, m.playerName(a.CurrentBidderID))))
		b.WriteString("\n  " + m.playerName(a.AuctioneerID) + " may match the bid.")
		b.WriteString("\n" + renderDeadline("Match window closes", a.Deadline))

	case game.AuctionStateSummary:
		if a.Summary != nil {
			b.WriteString(summaryStyle.Render(a.Summary.Message))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHelp() string {
	var keys []string
	if m.snap.Phase == game.PhaseLobby {
		keys = append(keys, "s: start game")
	}
	if a := m.snap.Auction; a == nil {
		if m.snap.Phase == game.PhaseAuction {
			keys = append(keys, "a: open auction")
		}
	} else {
		switch a.State {
		case game.AuctionStateInProgress:
			keys = append(keys, "b: bid", "e: close bidding")
		case game.AuctionStateMatchBid:
			keys = append(keys, "m: match", "e: let it go")
		case game.AuctionStateSummary:
			keys = append(keys, "c: continue")
			if a.Summary != nil && a.Summary.Kind == game.SummaryBluffDetected {
				keys = append(keys, "r: re-auction")
			}
		}
	}
	keys = append(keys, "esc: menu", "q: quit")
	return helpStyle.Render("\n" + strings.Join(keys, " • "))
}

func (m Model) playerName(id string) string {
	for _, p := range m.snap.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func renderAnimals(animals []game.Card) string {
	if len(animals) == 0 {
		return blurredStyle.Render("no animals")
	}
	counts := make(map[game.Species]int)
	var order []game.Species
	for _, c := range animals {
		if counts[c.Species] == 0 {
			order = append(order, c.Species)
		}
		counts[c.Species]++
	}
	parts := make([]string, 0, len(order))
	for _, sp := range order {
		parts = append(parts, fmt.Sprintf("%s x%d", sp, counts[sp]))
	}
	return strings.Join(parts, ", ")
}

func renderDeadline(label string, deadline time.Time) string {
	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	return blurredStyle.Render(fmt.Sprintf("  %s in %ds", label, int(remaining.Seconds())))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
