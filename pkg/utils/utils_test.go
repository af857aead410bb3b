package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/coinched/pkg/coinche"
)

func TestFormatCards(t *testing.T) {
	assert.Equal(t, "None", FormatCards(nil))
	assert.Equal(t, "A♥ 10♠", FormatCards([]coinche.Card{
		coinche.NewCard(coinche.Hearts, coinche.Ace),
		coinche.NewCard(coinche.Spades, coinche.Ten),
	}))
	assert.Equal(t, "None", FormatHand(0))
}

func TestEnsureDataDirExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "coincher")
	require.NoError(t, EnsureDataDirExists(dir))

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, EnsureDataDirExists(dir))
}

func TestAppDataDir(t *testing.T) {
	assert.NotEmpty(t, AppDataDir("coinched"))
}
