package db

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndQueryTransfers(t *testing.T) {
	d := testDB(t)

	if err := d.RecordTransfer("g1", "normal_win", "bob", "alice", 50, 50, 1); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}
	if err := d.RecordTransfer("g1", "matched_bid", "alice", "bob", 70, 100, 2); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}
	if err := d.RecordTransfer("g2", "normal_win", "carol", "dave", 30, 30, 3); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}

	transfers, err := d.GameTransfers("g1")
	if err != nil {
		t.Fatalf("GameTransfers: %v", err)
	}
	if len(transfers) != 2 {
		t.Fatalf("Expected 2 transfers for g1, got %d", len(transfers))
	}
	if transfers[0].Kind != "normal_win" || transfers[1].Kind != "matched_bid" {
		t.Errorf("Transfers out of insertion order: %v, %v", transfers[0].Kind, transfers[1].Kind)
	}
	if transfers[1].Moved != 100 || transfers[1].Cards != 2 {
		t.Errorf("Transfer fields lost: %+v", transfers[1])
	}

	volume, err := d.PlayerVolume("alice")
	if err != nil {
		t.Fatalf("PlayerVolume: %v", err)
	}
	if volume != 100 {
		t.Errorf("Expected alice to have paid $100, got $%d", volume)
	}

	// Unknown player sums to zero, not an error.
	volume, err = d.PlayerVolume("nobody")
	if err != nil || volume != 0 {
		t.Errorf("Expected zero volume for unknown player, got %d, %v", volume, err)
	}
}

func TestRecordAndQueryBonuses(t *testing.T) {
	d := testDB(t)

	if err := d.RecordBonus("g1", 1, 50, 3); err != nil {
		t.Fatalf("RecordBonus: %v", err)
	}
	if err := d.RecordBonus("g1", 2, 100, 3); err != nil {
		t.Fatalf("RecordBonus: %v", err)
	}

	bonuses, err := d.GameBonuses("g1")
	if err != nil {
		t.Fatalf("GameBonuses: %v", err)
	}
	if len(bonuses) != 2 {
		t.Fatalf("Expected 2 bonuses, got %d", len(bonuses))
	}
	if bonuses[1].Draw != 2 || bonuses[1].Amount != 100 || bonuses[1].Players != 3 {
		t.Errorf("Bonus fields lost: %+v", bonuses[1])
	}

	empty, err := d.GameBonuses("g2")
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no bonuses for g2, got %v, %v", empty, err)
	}
}
