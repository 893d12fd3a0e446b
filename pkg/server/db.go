package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kuhhandel/kuhhandel/pkg/server/internal/db"
)

// Ledger defines the interface for settlement persistence. The ledger is an
// append-only audit trail; nothing in the engine reads it back during play.
type Ledger interface {
	// RecordTransfer appends one auction settlement
	RecordTransfer(gameID, kind, payerID, payeeID string, owed, moved, cards int) error
	// RecordBonus appends one table-wide bonus payout
	RecordBonus(gameID string, draw, amount, players int) error

	// History queries
	GameTransfers(gameID string) ([]*db.Transfer, error)
	GameBonuses(gameID string) ([]*db.Bonus, error)
	PlayerVolume(playerID string) (int, error)

	// Close closes the database connection
	Close() error
}

// NewLedger creates a new ledger database connection
func NewLedger(dbPath string) (Ledger, error) {
	// Ensure the directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	return db.NewDB(dbPath)
}
