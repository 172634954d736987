package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir, "sync:\n  enabled: false\n")

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), filepath.Join(tmpDir, "data", "store.yml"))
	assert.Contains(t, string(content), "sync:\n  enabled: false\n")

	info, err := os.Stat(filepath.Join(tmpDir, "data"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
