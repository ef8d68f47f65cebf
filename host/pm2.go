package host

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/afsarctg/minerdiag/core"
)

// SupervisorStatus describes the supervised process as reported by pm2.
type SupervisorStatus struct {
	Found    bool    `json:"found"`
	Status   string  `json:"status,omitempty"`
	UptimeMS int64   `json:"uptime_ms,omitempty"`
	Restarts int     `json:"restarts,omitempty"`
	MemoryMB float64 `json:"memory_mb,omitempty"`
	CPU      float64 `json:"cpu,omitempty"`
}

// Online reports whether the process is up according to pm2.
func (s SupervisorStatus) Online() bool {
	return s.Found && s.Status == "online"
}

// SupervisorClient queries the pm2 process supervisor for the state
// and recent logs of one named process.
type SupervisorClient struct {
	runner      Runner
	processName string
	statusWait  time.Duration
	logWait     time.Duration
}

// NewSupervisorClient builds a client for the named pm2 process.
func NewSupervisorClient(runner Runner, processName string, statusWait, logWait time.Duration) *SupervisorClient {
	return &SupervisorClient{
		runner:      runner,
		processName: processName,
		statusWait:  statusWait,
		logWait:     logWait,
	}
}

// Status runs `pm2 jlist` and extracts the entry for the supervised
// process. A process not in the list yields Found=false, not an error.
func (c *SupervisorClient) Status(ctx context.Context) (SupervisorStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusWait)
	defer cancel()

	out, err := c.runner.Run(ctx, "pm2", "jlist")
	if err != nil {
		return SupervisorStatus{}, core.NewCollabError(core.ErrorCollaboratorUnavailable, err)
	}

	var processes []map[string]any
	if err := json.Unmarshal(out, &processes); err != nil {
		return SupervisorStatus{}, core.NewMalformedOutputError(fmt.Errorf("invalid pm2 jlist output: %w", err), string(out))
	}

	for _, proc := range processes {
		if asString(proc["name"]) != c.processName {
			continue
		}
		env := asMap(proc["pm2_env"])
		monit := asMap(proc["monit"])
		return SupervisorStatus{
			Found:    true,
			Status:   asString(env["status"]),
			UptimeMS: int64(asFloat(env["pm_uptime"])),
			Restarts: int(asFloat(env["restart_time"])),
			MemoryMB: math.Round(asFloat(monit["memory"])/1024/1024*10) / 10,
			CPU:      asFloat(monit["cpu"]),
		}, nil
	}
	return SupervisorStatus{Found: false}, nil
}

// RecentLogs returns the last `lines` log lines of the supervised
// process, stdout and stderr interleaved.
func (c *SupervisorClient) RecentLogs(ctx context.Context, lines int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.logWait)
	defer cancel()

	out, err := c.runner.RunCombined(ctx, "pm2",
		"logs", c.processName, "--lines", strconv.Itoa(lines), "--nostream")
	if err != nil {
		return "", core.NewCollabError(core.ErrorCollaboratorUnavailable, err)
	}
	return string(out), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}
