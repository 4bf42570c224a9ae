package agent

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingCredential is returned before any request is attempted when
	// no Anthropic API key can be resolved.
	ErrMissingCredential = errors.New("no Anthropic API key configured: set ANTHROPIC_API_KEY or run 'devpack configure'")

	// ErrAgentExhausted is returned when the backend repeatedly failed to
	// produce a schema-conformant detection report. It usually means the
	// schema is too complex or the task was ambiguous; retrying client-side
	// will not help.
	ErrAgentExhausted = errors.New("agent could not produce valid structured output after multiple attempts")

	// ErrAgentNoOutput is returned when the exchange completed without the
	// backend ever submitting a structured detection report.
	ErrAgentNoOutput = errors.New("agent did not return structured output")
)

// SchemaValidationError reports a detection payload that does not conform to
// the required schema or the permitted technology vocabulary.
type SchemaValidationError struct {
	Schema string // name of the expected result schema
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("payload does not conform to %s schema: %s", e.Schema, e.Reason)
}
