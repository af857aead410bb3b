package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/server/internal/db"
)

// Database stores the hand history of parties. It is written as parties
// progress and only read back for display.
type Database interface {
	// SaveParty records the creation of a party.
	SaveParty(id uuid.UUID, first coinche.Seat, at time.Time) error
	// SaveHand records a finished hand.
	SaveHand(id uuid.UUID, hand HandSummary) error
	// CancelParty records the end of a party.
	CancelParty(id uuid.UUID, reason string, at time.Time) error
	// LoadHands returns the finished hands of a party in play order.
	LoadHands(id uuid.UUID) ([]HandSummary, error)

	// Close closes the database connection
	Close() error
}

// NewDatabase opens the SQLite history database at dbPath.
func NewDatabase(dbPath string) (Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	sqlDB, err := db.NewDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteDatabase{db: sqlDB}, nil
}

// sqliteDatabase converts between history records and table rows.
type sqliteDatabase struct {
	db *db.DB
}

func (s *sqliteDatabase) SaveParty(id uuid.UUID, first coinche.Seat, at time.Time) error {
	return s.db.SaveParty(&db.Party{
		ID:        id.String(),
		First:     int(first),
		CreatedAt: at.UnixNano(),
	})
}

func (s *sqliteDatabase) SaveHand(id uuid.UUID, hand HandSummary) error {
	return s.db.SaveHand(&db.Hand{
		PartyID:      id.String(),
		Number:       hand.Number,
		First:        int(hand.First),
		Author:       int(hand.Contract.Author),
		Trump:        hand.Contract.Trump.String(),
		Target:       hand.Contract.Target.String(),
		CoincheLevel: hand.Contract.CoincheLevel,
		Winner:       int(hand.Winner),
		Taken:        hand.Taken,
		Points:       hand.Points,
		Scores:       hand.Scores,
		FinishedAt:   hand.At.UnixNano(),
	})
}

func (s *sqliteDatabase) CancelParty(id uuid.UUID, reason string, at time.Time) error {
	return s.db.CancelParty(id.String(), reason, at.UnixNano())
}

func (s *sqliteDatabase) LoadHands(id uuid.UUID) ([]HandSummary, error) {
	rows, err := s.db.LoadHands(id.String())
	if err != nil {
		return nil, err
	}

	hands := make([]HandSummary, 0, len(rows))
	for _, row := range rows {
		trump, err := coinche.ParseSuit(row.Trump)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %v", row.Number, err)
		}
		target, err := coinche.ParseTarget(row.Target)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %v", row.Number, err)
		}
		hands = append(hands, HandSummary{
			Number: row.Number,
			First:  coinche.Seat(row.First),
			Contract: coinche.Contract{
				Author:       coinche.Seat(row.Author),
				Trump:        trump,
				Target:       target,
				CoincheLevel: row.CoincheLevel,
			},
			Taken:  row.Taken,
			Winner: coinche.Team(row.Winner),
			Points: row.Points,
			Scores: row.Scores,
			At:     time.Unix(0, row.FinishedAt),
		})
	}
	return hands, nil
}

func (s *sqliteDatabase) Close() error {
	return s.db.Close()
}
