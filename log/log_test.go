package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_WiresLoggers(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	Initialize(false)
	defer Close()

	require.NotNil(t, InfoLog)
	require.NotNil(t, WarningLog)
	require.NotNil(t, ErrorLog)

	ErrorLog.Printf("boom: %v", "details")
	WarningLog.Print("careful")

	data, err := os.ReadFile(filepath.Join(os.TempDir(), LogFileName))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "ERROR: "))
	assert.True(t, strings.Contains(content, "boom: details"))
	assert.True(t, strings.Contains(content, "WARNING: "))
}

func TestClose_SafeWithoutFile(t *testing.T) {
	logFile = nil
	Close()
	Close()
}
