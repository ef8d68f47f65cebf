package host

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/afsarctg/minerdiag/core"
)

// CredentialDir locates credential artifacts (cookie files) for the
// identity fleet. Only presence and modification time are consumed;
// file contents are never read.
type CredentialDir struct {
	dir string
	now func() time.Time
}

// NewCredentialDir builds a lookup over the given directory.
func NewCredentialDir(dir string) *CredentialDir {
	return &CredentialDir{dir: dir, now: time.Now}
}

// Path returns the expected cookie file path for an identity. The
// first identity's file carries no suffix, a convention inherited
// from the miner.
func (c *CredentialDir) Path(identity int) string {
	suffix := ""
	if identity != 1 {
		suffix = fmt.Sprintf("_account%d", identity)
	}
	return filepath.Join(c.dir, fmt.Sprintf("twitter_cookies%s.json", suffix))
}

// Lookup reports whether the identity's credential artifact exists and
// how old it is, in hours rounded to one decimal.
func (c *CredentialDir) Lookup(identity int) core.CredentialInfo {
	info, err := os.Stat(c.Path(identity))
	if err != nil {
		return core.CredentialInfo{Present: false}
	}
	age := c.now().UTC().Sub(info.ModTime().UTC()).Hours()
	age = math.Round(age*10) / 10
	return core.CredentialInfo{Present: true, AgeHours: &age}
}
