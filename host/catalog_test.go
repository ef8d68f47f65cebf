package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afsarctg/minerdiag/core"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "error_catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogFileLoad(t *testing.T) {
	path := writeCatalog(t, `{
		"version": "2.1",
		"errors": [
			{"id": "X001", "category": "network", "severity": "high",
			 "pattern": "connection refused", "root_cause": "upstream down", "fix": "restart"}
		]
	}`)

	catalog := NewCatalogFile(path).Load()

	assert.Equal(t, "2.1", catalog.Version)
	require.Len(t, catalog.Entries, 1)
	assert.Equal(t, "X001", catalog.Entries[0].ID)
	assert.Equal(t, core.SeverityHigh, catalog.Entries[0].Severity)
}

func TestCatalogFileMissingDegradesToEmpty(t *testing.T) {
	catalog := NewCatalogFile(filepath.Join(t.TempDir(), "nope.json")).Load()

	assert.Equal(t, core.EmptyCatalog(), catalog)
}

func TestCatalogFileMalformedDegradesToEmpty(t *testing.T) {
	path := writeCatalog(t, `{"version": "1.0", "errors": [`)

	catalog := NewCatalogFile(path).Load()

	assert.Equal(t, core.EmptyCatalog(), catalog)
}

func TestCatalogFileFillsDefaults(t *testing.T) {
	path := writeCatalog(t, `{}`)

	catalog := NewCatalogFile(path).Load()

	assert.Equal(t, "0", catalog.Version)
	assert.NotNil(t, catalog.Entries)
	assert.Empty(t, catalog.Entries)
}
