package minerdiag

import (
	"encoding/json"
	"log"
	"time"
)

// opLogger emits one structured JSON line per diagnostic operation,
// keyed by request id.
type opLogger struct {
	logger *log.Logger
}

func newOpLogger(logger *log.Logger) *opLogger {
	return &opLogger{logger: logger}
}

// logOp records a completed operation. errMsg is empty when the
// operation fully succeeded.
func (l *opLogger) logOp(op, requestID string, duration time.Duration, errMsg string) {
	entry := map[string]any{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"event":       "operation",
		"op":          op,
		"request_id":  requestID,
		"duration_ms": duration.Milliseconds(),
	}
	if errMsg != "" {
		entry["error"] = errMsg
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("Error marshaling log entry: %v", err)
		return
	}
	l.logger.Println(string(data))
}
