package host

import (
	"encoding/json"
	"os"

	"github.com/afsarctg/minerdiag/core"
)

// CatalogFile loads the known-error catalog from a JSON file. Loading
// never fails: a missing, unreadable, or malformed file degrades to
// the empty catalog so a scan can still answer.
type CatalogFile struct {
	path string
}

// NewCatalogFile builds a loader for the given path.
func NewCatalogFile(path string) *CatalogFile {
	return &CatalogFile{path: path}
}

// Load reads the catalog fresh; there is no caching across calls.
func (c *CatalogFile) Load() core.Catalog {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return core.EmptyCatalog()
	}
	var catalog core.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return core.EmptyCatalog()
	}
	if catalog.Version == "" {
		catalog.Version = "0"
	}
	if catalog.Entries == nil {
		catalog.Entries = []core.CatalogEntry{}
	}
	return catalog
}
