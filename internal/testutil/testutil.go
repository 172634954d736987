// Package testutil provides shared test helpers for creating config files.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a config file that keeps the local store and exports under tmpDir.
// extra is appended as is, so it may override any section other than store.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, extra string) string {
	t.Helper()

	dataDir := filepath.Join(tmpDir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	configContent := fmt.Sprintf(`store:
  driver: file
  path: %s
`, filepath.Join(dataDir, "store.yml")) + extra

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
