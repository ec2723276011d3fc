package watchlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TrimsAndSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	content := "2330.TW\n\n  AAPL  \n\t\nMSFT\r\nAAPL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	symbols, err := Load(path, "DEFAULT")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330.TW", "AAPL", "MSFT", "AAPL"}, symbols)
}

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	symbols, err := Load(filepath.Join(t.TempDir(), "nope.txt"), "2330.TW")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330.TW"}, symbols)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n   \n"), 0644))

	symbols, err := Load(path, "2330.TW")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestLoad_DirectoryIsAnError(t *testing.T) {
	_, err := Load(t.TempDir(), "2330.TW")
	assert.Error(t, err)
}

func TestLoad_LongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	long := strings.Repeat("A", 70*1024)
	require.NoError(t, os.WriteFile(path, []byte("AAPL\n"+long+"\nMSFT"), 0644))

	symbols, err := Load(path, "DEFAULT")
	require.NoError(t, err)
	require.Len(t, symbols, 3)
	assert.Equal(t, long, symbols[1])
	assert.Equal(t, "MSFT", symbols[2])
}
