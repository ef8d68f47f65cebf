package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afsarctg/minerdiag/core"
)

// LedgerPosition is the miner's standing on the chain ledger.
type LedgerPosition struct {
	UID       int     `json:"uid"`
	Incentive float64 `json:"incentive"`
	Trust     float64 `json:"trust"`
	Rank      float64 `json:"rank"`
}

// ErrNotRegistered is returned when the configured hotkey is not
// present on the ledger.
var ErrNotRegistered = errors.New("hotkey not registered on ledger")

// LedgerClient resolves the miner's ledger position by running a
// configured helper command that prints a single JSON object:
// {"uid":..,"incentive":..,"trust":..,"rank":..} on success or
// {"error":"not_found"} when the hotkey is unregistered.
type LedgerClient struct {
	runner  Runner
	command []string
	wait    time.Duration
}

// NewLedgerClient builds a client around the helper command. The
// command receives no extra arguments.
func NewLedgerClient(runner Runner, command []string, wait time.Duration) *LedgerClient {
	return &LedgerClient{runner: runner, command: command, wait: wait}
}

// Position runs the helper and parses its output.
func (c *LedgerClient) Position(ctx context.Context) (LedgerPosition, error) {
	if len(c.command) == 0 {
		return LedgerPosition{}, core.NewCollabError(core.ErrorConfigurationMissing,
			errors.New("no ledger command configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.wait)
	defer cancel()

	out, err := c.runner.Run(ctx, c.command[0], c.command[1:]...)
	if err != nil {
		return LedgerPosition{}, core.NewCollabError(core.ErrorCollaboratorUnavailable, err)
	}

	raw := strings.TrimSpace(string(out))
	var payload struct {
		LedgerPosition
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return LedgerPosition{}, core.NewMalformedOutputError(fmt.Errorf("invalid ledger output: %w", err), raw)
	}
	if payload.Error != "" {
		return LedgerPosition{}, core.NewCollabError(core.ErrorCollaboratorUnavailable, ErrNotRegistered)
	}
	return payload.LedgerPosition, nil
}
