package db

import (
	"database/sql"
	"fmt"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// Party is a row of the parties table.
type Party struct {
	ID        string
	First     int
	CreatedAt int64
	// CancelledAt is zero while the party is live.
	CancelledAt int64
	Reason      string
}

// Hand is a row of the hands table.
type Hand struct {
	PartyID      string
	Number       int
	First        int
	Author       int
	Trump        string
	Target       string
	CoincheLevel int
	Winner       int
	Taken        [2]int
	Points       [2]int
	Scores       [2]int
	FinishedAt   int64
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; history workers and /history readers
	// share one connection.
	db.SetMaxOpenConns(1)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS parties (
			id TEXT PRIMARY KEY,
			first_seat INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			cancelled_at INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hands (
			party_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			first_seat INTEGER NOT NULL,
			author INTEGER NOT NULL,
			trump TEXT NOT NULL,
			target TEXT NOT NULL,
			coinche_level INTEGER NOT NULL,
			winner INTEGER NOT NULL,
			taken0 INTEGER NOT NULL,
			taken1 INTEGER NOT NULL,
			points0 INTEGER NOT NULL,
			points1 INTEGER NOT NULL,
			score0 INTEGER NOT NULL,
			score1 INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			PRIMARY KEY (party_id, number),
			FOREIGN KEY (party_id) REFERENCES parties(id)
		)
	`)
	return err
}

// SaveParty records a new party.
func (db *DB) SaveParty(p *Party) error {
	_, err := db.Exec(`
		INSERT INTO parties (id, first_seat, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.ID, p.First, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save party %s: %v", p.ID, err)
	}
	return nil
}

// CancelParty marks a party as cancelled.
func (db *DB) CancelParty(id, reason string, at int64) error {
	res, err := db.Exec(`
		UPDATE parties SET cancelled_at = ?, reason = ?
		WHERE id = ? AND cancelled_at = 0
	`, at, reason, id)
	if err != nil {
		return fmt.Errorf("failed to cancel party %s: %v", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("party %s not found or already cancelled", id)
	}
	return nil
}

// LoadParty returns a party row.
func (db *DB) LoadParty(id string) (*Party, error) {
	p := &Party{ID: id}
	err := db.QueryRow(`
		SELECT first_seat, created_at, cancelled_at, reason
		FROM parties WHERE id = ?
	`, id).Scan(&p.First, &p.CreatedAt, &p.CancelledAt, &p.Reason)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("party not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load party %s: %v", id, err)
	}
	return p, nil
}

// SaveHand records a finished hand.
func (db *DB) SaveHand(h *Hand) error {
	_, err := db.Exec(`
		INSERT INTO hands (party_id, number, first_seat, author, trump, target,
			coinche_level, winner, taken0, taken1, points0, points1, score0, score1,
			finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.PartyID, h.Number, h.First, h.Author, h.Trump, h.Target,
		h.CoincheLevel, h.Winner, h.Taken[0], h.Taken[1], h.Points[0], h.Points[1],
		h.Scores[0], h.Scores[1], h.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save hand %d of party %s: %v", h.Number, h.PartyID, err)
	}
	return nil
}

// LoadHands returns the finished hands of a party in play order.
func (db *DB) LoadHands(partyID string) ([]*Hand, error) {
	rows, err := db.Query(`
		SELECT number, first_seat, author, trump, target, coinche_level, winner,
			taken0, taken1, points0, points1, score0, score1, finished_at
		FROM hands WHERE party_id = ?
		ORDER BY number
	`, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hands of party %s: %v", partyID, err)
	}
	defer rows.Close()

	var hands []*Hand
	for rows.Next() {
		h := &Hand{PartyID: partyID}
		err := rows.Scan(&h.Number, &h.First, &h.Author, &h.Trump, &h.Target,
			&h.CoincheLevel, &h.Winner, &h.Taken[0], &h.Taken[1], &h.Points[0],
			&h.Points[1], &h.Scores[0], &h.Scores[1], &h.FinishedAt)
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}
	return hands, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
