package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldLogRespectsLevel(t *testing.T) {
	defer InitWithLevel("info")

	InitWithLevel("warn")
	require.True(t, shouldLog("error"))
	require.True(t, shouldLog("warn"))
	require.False(t, shouldLog("info"))
	require.False(t, shouldLog("verbose"))

	InitWithLevel("verbose")
	require.True(t, shouldLog("debug"))
	require.True(t, shouldLog("verbose"))

	InitWithLevel("nonsense")
	require.True(t, shouldLog("info"))
	require.False(t, shouldLog("debug"))
}

func TestInitWithConfigWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricer.log")
	require.NoError(t, InitWithConfig(Config{Level: "info", File: path, MaxSizeMB: 1}))

	Info.Printf("priced %s", "AAPL")
	Debug.Printf("hidden at info")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "priced AAPL"))
	require.False(t, strings.Contains(text, "hidden at info"))
}

func TestInitWithConfigBadPath(t *testing.T) {
	defer InitWithLevel("info")
	err := InitWithConfig(Config{Level: "info", File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	require.Error(t, err)
}

func TestValidLevel(t *testing.T) {
	require.True(t, ValidLevel("debug"))
	require.False(t, ValidLevel("trace"))
}
