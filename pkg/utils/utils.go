package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/vctt94/coinched/pkg/coinche"
)

// AppDataDir returns the default data directory of an application.
func AppDataDir(appName string) string {
	return dcrutil.AppDataDir(appName, false)
}

// FormatCards is a helper function for displaying cards
func FormatCards(cards []coinche.Card) string {
	if len(cards) == 0 {
		return "None"
	}

	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = card.Rank.String() + card.Suit.Symbol()
	}
	return strings.Join(parts, " ")
}

// FormatHand displays a hand sorted by suit and rank.
func FormatHand(hand coinche.Hand) string {
	return FormatCards(hand.Cards())
}

// EnsureDataDirExists creates the datadir and necessary subdirectories if they don't exist
func EnsureDataDirExists(datadir string) error {
	// Create main datadir
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return fmt.Errorf("failed to create datadir %s: %v", datadir, err)
	}

	// Create logs subdirectory
	logsDir := filepath.Join(datadir, "logs")
	if err := os.MkdirAll(logsDir, 0700); err != nil {
		return fmt.Errorf("failed to create logs directory %s: %v", logsDir, err)
	}

	return nil
}
