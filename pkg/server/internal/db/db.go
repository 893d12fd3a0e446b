package db

import (
	"database/sql"
	"fmt"
)

// DB represents the ledger database connection
type DB struct {
	*sql.DB
}

// Transfer is one persisted auction settlement: payer, payee, what was owed
// and what actually moved in cards.
type Transfer struct {
	ID        int64
	GameID    string
	Kind      string
	PayerID   string
	PayeeID   string
	Owed      int
	Moved     int
	Cards     int
	CreatedAt string
}

// Bonus is one persisted table-wide bonus payout.
type Bonus struct {
	ID        int64
	GameID    string
	Draw      int
	Amount    int
	Players   int
	CreatedAt string
}

// NewDB creates a new ledger database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transfers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payer_id TEXT NOT NULL,
			payee_id TEXT NOT NULL,
			owed INTEGER NOT NULL,
			moved INTEGER NOT NULL,
			cards INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bonuses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			draw INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			players INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	return nil
}

// RecordTransfer appends a settlement to the ledger
func (db *DB) RecordTransfer(gameID, kind, payerID, payeeID string, owed, moved, cards int) error {
	_, err := db.Exec(`
		INSERT INTO transfers (game_id, kind, payer_id, payee_id, owed, moved, cards)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, gameID, kind, payerID, payeeID, owed, moved, cards)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %v", err)
	}
	return nil
}

// RecordBonus appends a bonus payout to the ledger
func (db *DB) RecordBonus(gameID string, draw, amount, players int) error {
	_, err := db.Exec(`
		INSERT INTO bonuses (game_id, draw, amount, players)
		VALUES (?, ?, ?, ?)
	`, gameID, draw, amount, players)
	if err != nil {
		return fmt.Errorf("failed to record bonus: %v", err)
	}
	return nil
}

// GameTransfers returns all settlements recorded for a game, oldest first
func (db *DB) GameTransfers(gameID string) ([]*Transfer, error) {
	rows, err := db.Query(`
		SELECT id, game_id, kind, payer_id, payee_id, owed, moved, cards, created_at
		FROM transfers WHERE game_id = ? ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %v", err)
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		t := &Transfer{}
		if err := rows.Scan(&t.ID, &t.GameID, &t.Kind, &t.PayerID, &t.PayeeID, &t.Owed, &t.Moved, &t.Cards, &t.CreatedAt); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// GameBonuses returns all bonus payouts recorded for a game, oldest first
func (db *DB) GameBonuses(gameID string) ([]*Bonus, error) {
	rows, err := db.Query(`
		SELECT id, game_id, draw, amount, players, created_at
		FROM bonuses WHERE game_id = ? ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonuses: %v", err)
	}
	defer rows.Close()

	var bonuses []*Bonus
	for rows.Next() {
		b := &Bonus{}
		if err := rows.Scan(&b.ID, &b.GameID, &b.Draw, &b.Amount, &b.Players, &b.CreatedAt); err != nil {
			return nil, err
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

// PlayerVolume returns the total amount a player has paid out across all
// recorded settlements.
func (db *DB) PlayerVolume(playerID string) (int, error) {
	var total sql.NullInt64
	err := db.QueryRow(`
		SELECT SUM(moved) FROM transfers WHERE payer_id = ?
	`, playerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum player volume: %v", err)
	}
	return int(total.Int64), nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
