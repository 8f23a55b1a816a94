package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/resonance/internal/ratelimit"
	"github.com/nvandessel/resonance/internal/resonance"
)

// AuditFile is the audit log name inside the .resonance directory.
const AuditFile = "audit.jsonl"

// AuditEntry represents a single audit log entry for an MCP tool invocation.
// It captures metadata about the call, never the state vectors themselves.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"` // an errorCodes value, never the message
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends audit entries to dir/audit.jsonl. It is safe for
// concurrent use. A nil AuditLogger is safe to use; all methods are no-ops
// on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens dir/audit.jsonl for append, creating dir if needed.
// If the file cannot be created, a warning is printed to stderr and nil is
// returned (non-fatal).
func NewAuditLogger(dir string) *AuditLogger {
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, AuditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as one JSON line. Safe to call on nil receiver.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(data)
}

// Close closes the audit file. Safe to call on nil receiver.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// sanitizeToolParams extracts safe metadata from tool parameters.
//
// Parameters are classified into three categories:
//   - Safe-value params: both key and value are logged (e.g., "cycles", "kind")
//   - Presence-only params: key is logged but value is replaced with "(set)"
//   - Unknown params: not logged at all
//
// A "_param_count" key is always included.
func sanitizeToolParams(params map[string]any) map[string]string {
	if params == nil {
		return nil
	}

	safeValueParams := map[string]bool{
		"cycles":      true,
		"interval":    true,
		"max_samples": true,
		"trajectory":  true,
		"save":        true,
		"kind":        true,
		"limit":       true,
	}

	// State vectors describe the caller's subject; only record that they were sent.
	presenceOnlyParams := map[string]bool{
		"state":  true,
		"bounds": true,
		"a":      true,
		"b":      true,
	}

	result := make(map[string]string)
	for key, val := range params {
		if safeValueParams[key] {
			result[key] = fmt.Sprintf("%v", val)
		} else if presenceOnlyParams[key] {
			result[key] = "(set)"
		}
	}
	result["_param_count"] = fmt.Sprintf("%d", len(params))

	return result
}

// errorCodes classifies tool errors for the audit log. Error messages can
// embed state and bounds components, so only the code is recorded.
var errorCodes = []struct {
	target error
	code   string
}{
	{context.Canceled, "cancelled"},
	{context.DeadlineExceeded, "deadline_exceeded"},
	{ratelimit.ErrRateLimited, "rate_limited"},
	{ErrTooManyCycles, "too_many_cycles"},
	{ErrInvalidHistoryQuery, "invalid_query"},
	{resonance.ErrInvalidDimension, "invalid_dimension"},
	{resonance.ErrInvalidCycles, "invalid_cycles"},
	{resonance.ErrInvalidBounds, "invalid_bounds"},
	{resonance.ErrInvalidRecordInterval, "invalid_record_interval"},
	{resonance.ErrInvalidState, "invalid_state"},
	{resonance.ErrNumericInstability, "numeric_instability"},
}

// auditErrorCode returns the code for err, or "internal" when it matches none.
func auditErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "internal"
}

// auditTool logs a tool invocation to the audit log.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = auditErrorCode(err)
	}

	s.auditLogger.Log(AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
	})
	s.decisionLogger.Log("tool_call", map[string]any{
		"tool":        toolName,
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
