package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/devpack-ai/devpack/pkg/logger"
)

// auditRecord captures one backend invocation for after-the-fact diagnosis.
// Records are written regardless of whether the call succeeded.
type auditRecord struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	RepoPath     string `json:"repo_path"`
	Schema       string `json:"schema"`
	PromptLength int    `json:"prompt_length"`
	OutputLength int    `json:"output_length"`
	StopReason   string `json:"stop_reason,omitempty"`
	Outcome      string `json:"outcome"`
	RawPayload   string `json:"raw_payload,omitempty"`
	Error        string `json:"error,omitempty"`
}

// newAuditID derives a record identifier from the invocation time, with a
// short random suffix so concurrent runs cannot collide.
func newAuditID(now time.Time) string {
	return now.Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// defaultAuditDir is where invocation records land unless overridden.
func defaultAuditDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".devpack", "logs", "agent")
	}
	return filepath.Join(homeDir, ".devpack", "logs", "agent")
}

// writeAudit persists the record. A failure here is logged and swallowed so
// it can never mask the detection call's own outcome.
func writeAudit(ctx context.Context, dir string, record auditRecord) {
	log := logger.G(ctx).WithField("audit_id", record.ID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Debug("Failed to create audit log directory")
		return
	}

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.WithError(err).Debug("Failed to encode audit record")
		return
	}

	path := filepath.Join(dir, "response_"+record.ID+".json")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		log.WithError(err).Debug("Failed to write audit record")
		return
	}
	log.WithField("path", path).Debug("Wrote agent audit record")
}
