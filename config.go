package minerdiag

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "10s" or "2m".
type Duration time.Duration

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// IdentityRange is the inclusive numeric range of tracked identities.
type IdentityRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

// Numbers expands the range into an ascending slice.
func (r IdentityRange) Numbers() []int {
	if r.Last < r.First {
		return nil
	}
	out := make([]int, 0, r.Last-r.First+1)
	for n := r.First; n <= r.Last; n++ {
		out = append(out, n)
	}
	return out
}

// Config carries every path, key, and bound the diagnostics need. It
// is built once at startup and passed into each component; nothing
// reads the environment after construction.
type Config struct {
	// DataDir is the miner's working directory
	DataDir string `yaml:"data_dir"`

	// CatalogPath is the known-error catalog JSON file.
	// Defaults to <data_dir>/scripts/error_catalog.json.
	CatalogPath string `yaml:"catalog_path"`

	// CredentialDir holds the per-identity cookie files.
	// Defaults to DataDir.
	CredentialDir string `yaml:"credential_dir"`

	// DatabasePath is the miner's SQLite storage file.
	// Defaults to <data_dir>/SqliteMinerStorage.sqlite.
	DatabasePath string `yaml:"database_path"`

	// ProcessName is the pm2 process to supervise
	ProcessName string `yaml:"process_name"`

	// LedgerCommand is the helper command printing the miner's ledger
	// position as JSON. Empty disables the ledger check.
	LedgerCommand []string `yaml:"ledger_command"`

	// Identities is the default fleet checked when a request names none
	Identities IdentityRange `yaml:"identities"`

	// IdentityTagFormat renders an identity number into its log tag
	IdentityTagFormat string `yaml:"identity_tag_format"`

	// ActivityPrefix precedes the tag on scheduling/activity log lines
	ActivityPrefix string `yaml:"activity_prefix"`

	// DefaultScanLines is the log window for scan_logs
	DefaultScanLines int `yaml:"default_scan_lines"`

	// IdentityLogLines is the log window for identity classification
	IdentityLogLines int `yaml:"identity_log_lines"`

	SupervisorTimeout Duration `yaml:"supervisor_timeout"`
	LogTimeout        Duration `yaml:"log_timeout"`
	LedgerTimeout     Duration `yaml:"ledger_timeout"`
	StoreTimeout      Duration `yaml:"store_timeout"`
}

// DefaultConfig returns the configuration matching the miner's stock
// layout under the user's home directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:           filepath.Join(home, "bittensor", "data-universe"),
		ProcessName:       "sn13-miner",
		Identities:        IdentityRange{First: 1, Last: 17},
		IdentityTagFormat: "twikit_account%d",
		ActivityPrefix:    "X.",
		DefaultScanLines:  500,
		IdentityLogLines:  3000,
		SupervisorTimeout: Duration(10 * time.Second),
		LogTimeout:        Duration(30 * time.Second),
		LedgerTimeout:     Duration(60 * time.Second),
		StoreTimeout:      Duration(30 * time.Second),
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment variables, in that precedence order. An empty path skips
// the file; a missing file at an explicit path is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.applyDerivedDefaults()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_UNIVERSE_PATH"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MINERDIAG_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("MINERDIAG_CREDENTIAL_DIR"); v != "" {
		cfg.CredentialDir = v
	}
	if v := os.Getenv("MINERDIAG_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("MINERDIAG_PROCESS_NAME"); v != "" {
		cfg.ProcessName = v
	}
	if v := os.Getenv("MINERDIAG_LEDGER_COMMAND"); v != "" {
		cfg.LedgerCommand = strings.Fields(v)
	}
	cfg.Identities.First = getIntEnv("MINERDIAG_IDENTITY_FIRST", cfg.Identities.First)
	cfg.Identities.Last = getIntEnv("MINERDIAG_IDENTITY_LAST", cfg.Identities.Last)
	cfg.DefaultScanLines = getIntEnv("MINERDIAG_SCAN_LINES", cfg.DefaultScanLines)
	cfg.IdentityLogLines = getIntEnv("MINERDIAG_IDENTITY_LOG_LINES", cfg.IdentityLogLines)
}

// applyDerivedDefaults fills paths that default relative to DataDir.
func (cfg *Config) applyDerivedDefaults() {
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = filepath.Join(cfg.DataDir, "scripts", "error_catalog.json")
	}
	if cfg.CredentialDir == "" {
		cfg.CredentialDir = cfg.DataDir
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "SqliteMinerStorage.sqlite")
	}
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
