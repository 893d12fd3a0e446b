// Package ui is the terminal client: a bubbletea program that polls the
// server for redacted snapshots and turns keystrokes into API calls. It holds
// no game rules of its own; whatever the server refuses is shown as an error
// line and play continues.
package ui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kuhhandel/kuhhandel/pkg/client"
	"github.com/kuhhandel/kuhhandel/pkg/game"
)

type menuOption string

const (
	optionCreateGame menuOption = "Create Game"
	optionListGames  menuOption = "List Games"
	optionJoinGame   menuOption = "Join Game"
	optionQuit       menuOption = "Quit"
)

// screenState represents the current screen in the UI
type screenState int

const (
	stateMainMenu screenState = iota
	stateGameList
	stateJoinInput
	stateInGame
)

// Model contains all the state for our UI
type Model struct {
	dispatcher *CommandDispatcher
	playerID   string

	state        screenState
	menuOptions  []menuOption
	selectedItem int

	games        []game.SessionSnapshot
	selectedGame int

	gameID string
	snap   game.SessionSnapshot

	// Bid entry. While bidding is true, digit keys accumulate in input.
	bidding bool
	input   string

	err     error
	message string
}

// NewModel creates a new UI model
func NewModel(ctx context.Context, c *client.Client) Model {
	return Model{
		dispatcher: NewCommandDispatcher(ctx, c),
		playerID:   c.PlayerID(),
		state:      stateMainMenu,
		menuOptions: []menuOption{
			optionCreateGame,
			optionListGames,
			optionJoinGame,
			optionQuit,
		},
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.snap = game.SessionSnapshot(msg)
		m.gameID = m.snap.ID
		m.state = stateInGame
		m.err = nil
		return m, nil

	case gamesMsg:
		m.games = msg
		m.selectedGame = 0
		m.state = stateGameList
		m.err = nil
		return m, nil

	case errorMsg:
		m.err = msg
		return m, nil

	case tickMsg:
		// Keep polling while attached to a game.
		if m.state == stateInGame && m.gameID != "" {
			return m, tea.Batch(m.dispatcher.pollCmd(m.gameID), tickCmd())
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.state {
	case stateMainMenu:
		return m.handleMenuKey(msg)
	case stateGameList:
		return m.handleGameListKey(msg)
	case stateJoinInput:
		return m.handleJoinInputKey(msg)
	case stateInGame:
		return m.handleGameKey(msg)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case "down", "j":
		if m.selectedItem < len(m.menuOptions)-1 {
			m.selectedItem++
		}
	case "q":
		return m, tea.Quit
	case "enter":
		switch m.menuOptions[m.selectedItem] {
		case optionCreateGame:
			return m, m.dispatcher.createGameCmd()
		case optionListGames:
			return m, m.dispatcher.listGamesCmd()
		case optionJoinGame:
			m.state = stateJoinInput
			m.input = ""
		case optionQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleGameListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedGame > 0 {
			m.selectedGame--
		}
	case "down", "j":
		if m.selectedGame < len(m.games)-1 {
			m.selectedGame++
		}
	case "enter":
		if len(m.games) > 0 {
			return m, m.dispatcher.joinGameCmd(m.games[m.selectedGame].ID)
		}
	case "r":
		return m, m.dispatcher.listGamesCmd()
	case "esc", "q":
		m.state = stateMainMenu
	}
	return m, nil
}

func (m Model) handleJoinInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id := strings.TrimSpace(m.input)
		m.input = ""
		if id != "" {
			return m, m.dispatcher.joinGameCmd(id)
		}
		m.state = stateMainMenu
	case tea.KeyEsc:
		m.input = ""
		m.state = stateMainMenu
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.bidding {
		return m.handleBidEntryKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		// Detach from the game view; the session keeps running server-side.
		m.state = stateMainMenu
		m.gameID = ""
	case "s":
		return m, m.dispatcher.startGameCmd(m.gameID)
	case "a":
		return m, m.dispatcher.startAuctionCmd(m.gameID)
	case "b":
		m.bidding = true
		m.input = ""
	case "e":
		return m, m.dispatcher.endAuctionCmd(m.gameID)
	case "m":
		return m, m.dispatcher.matchBidCmd(m.gameID)
	case "c":
		return m, m.dispatcher.clearSummaryCmd(m.gameID)
	case "r":
		return m, m.dispatcher.restartAuctionCmd(m.gameID)
	}
	return m, nil
}

func (m Model) handleBidEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.bidding = false
		amount, err := strconv.Atoi(m.input)
		m.input = ""
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.dispatcher.placeBidCmd(m.gameID, amount)
	case tea.KeyEsc:
		m.bidding = false
		m.input = ""
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' {
				m.input += string(r)
			}
		}
	}
	return m, nil
}
