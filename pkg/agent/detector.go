// Package agent implements agent-backed stack detection: it delegates
// repository inspection to an Anthropic reasoning backend constrained to
// read-only tools and a closed output schema, then validates and normalizes
// the structured result. The exchange is one logical blocking call; no
// partial results are exposed.
package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/devpack-ai/devpack/pkg/config"
	"github.com/devpack-ai/devpack/pkg/logger"
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

const (
	reportStackTool   = "report_stack"
	reportContextTool = "report_project_context"

	schemaStack   = "DetectionResult"
	schemaContext = "ProjectContext"

	defaultMaxTokens      = 8192
	defaultMaxTurns       = 30
	defaultReportAttempts = 3
)

// messageService is the slice of the Anthropic client the detector needs.
// Tests substitute a fake; production uses anthropic.Client.Messages.
type messageService interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Detector runs agent-backed stack detection against a repository.
type Detector struct {
	svc            messageService
	model          anthropic.Model
	maxTokens      int64
	tools          []inspectTool
	auditDir       string
	maxTurns       int
	reportAttempts int
}

// Option configures a Detector.
type Option func(*Detector) error

// WithModel overrides the backend model.
func WithModel(model anthropic.Model) Option {
	return func(d *Detector) error {
		d.model = model
		return nil
	}
}

// WithAuditDir overrides where invocation audit records are written.
func WithAuditDir(dir string) Option {
	return func(d *Detector) error {
		d.auditDir = dir
		return nil
	}
}

// WithMessageService injects a backend implementation, bypassing credential
// resolution. Intended for tests.
func WithMessageService(svc messageService) Option {
	return func(d *Detector) error {
		d.svc = svc
		return nil
	}
}

// NewDetector creates a detector, resolving the Anthropic credential unless
// a backend was injected. A missing credential fails here, before any
// request could be dispatched.
func NewDetector(opts ...Option) (*Detector, error) {
	d := &Detector{
		model:          anthropic.ModelClaude3_7SonnetLatest,
		maxTokens:      defaultMaxTokens,
		tools:          inspectTools(),
		auditDir:       defaultAuditDir(),
		maxTurns:       defaultMaxTurns,
		reportAttempts: defaultReportAttempts,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.svc == nil {
		key, source := config.ResolveAPIKey()
		if key == "" {
			return nil, ErrMissingCredential
		}
		logger.L.WithField("source", string(source)).Debug("Resolved Anthropic API key")
		client := anthropic.NewClient(option.WithAPIKey(key))
		d.svc = &client.Messages
	}

	return d, nil
}

// DetectTechStack asks the backend for the repository's technology stack.
func (d *Detector) DetectTechStack(ctx context.Context, repoPath string) (*stack.DetectionResult, error) {
	raw, err := d.converse(ctx, repoPath, stackPrompt(), reportStackTool, schemaStack,
		GenerateSchema[stack.DetectionResult](),
		func(raw json.RawMessage) error {
			_, err := validateStack(ctx, raw)
			return err
		})
	if err != nil {
		return nil, err
	}
	// Final validation pass over the accepted payload.
	return validateStack(ctx, raw)
}

// DetectProjectContext asks the backend for the richer project context used
// to seed agents.md.
func (d *Detector) DetectProjectContext(ctx context.Context, repoPath string) (*stack.ProjectContext, error) {
	raw, err := d.converse(ctx, repoPath, projectContextPrompt(), reportContextTool, schemaContext,
		GenerateSchema[stack.ProjectContext](),
		func(raw json.RawMessage) error {
			_, err := validateContext(ctx, raw)
			return err
		})
	if err != nil {
		return nil, err
	}
	return validateContext(ctx, raw)
}

// converse runs the agentic exchange: the backend inspects the repository
// through read-only tools and terminates by calling the report tool with a
// payload that passes validate. Invalid reports are fed back as tool errors
// up to the attempt limit; the whole invocation is audited regardless of
// outcome.
func (d *Detector) converse(
	ctx context.Context,
	repoPath string,
	prompt string,
	reportName string,
	schemaName string,
	reportSchema *jsonschema.Schema,
	validate func(json.RawMessage) error,
) (payload json.RawMessage, err error) {
	record := auditRecord{
		ID:           newAuditID(time.Now()),
		Timestamp:    time.Now().Format(time.RFC3339),
		RepoPath:     repoPath,
		Schema:       schemaName,
		PromptLength: len(prompt),
	}
	defer func() {
		record.OutputLength = len(record.RawPayload)
		if record.Outcome == "" {
			record.Outcome = "success"
		}
		if err != nil {
			record.Error = err.Error()
		}
		writeAudit(ctx, d.auditDir, record)
	}()

	log := logger.G(ctx).WithField("repo_path", repoPath).WithField("schema", schemaName)
	log.Debug("Starting agent-backed detection")

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}
	tools := d.anthropicTools(reportName, reportSchema)

	failedReports := 0
	for turn := 0; turn < d.maxTurns; turn++ {
		response, callErr := d.svc.New(ctx, anthropic.MessageNewParams{
			Model:     d.model,
			MaxTokens: d.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  messages,
			Tools:     tools,
		})
		if callErr != nil {
			record.Outcome = "transport_error"
			return nil, errors.Wrap(callErr, "error sending message to Anthropic")
		}
		record.StopReason = string(response.StopReason)

		messages = append(messages, assistantParam(response))

		var toolResults []anthropic.ContentBlockParamUnion
		for _, block := range response.Content {
			switch block.Type {
			case "text":
				record.RawPayload = block.Text
			case "tool_use":
				input := json.RawMessage(block.Input)
				if block.Name == reportName {
					record.RawPayload = string(input)
					if verr := validate(input); verr != nil {
						failedReports++
						log.WithError(verr).WithField("attempt", failedReports).
							Debug("Agent submitted a non-conformant report")
						if failedReports >= d.reportAttempts {
							record.Outcome = "exhausted"
							return nil, errors.Wrap(ErrAgentExhausted, verr.Error())
						}
						toolResults = append(toolResults,
							anthropic.NewToolResultBlock(block.ID, verr.Error(), true))
						continue
					}
					return input, nil
				}
				output, isError := d.runTool(ctx, repoPath, block.Name, input)
				toolResults = append(toolResults,
					anthropic.NewToolResultBlock(block.ID, output, isError))
			}
		}

		// No tool activity means the backend finished without reporting.
		if len(toolResults) == 0 {
			break
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	record.Outcome = "no_output"
	return nil, ErrAgentNoOutput
}

// runTool executes one read-only inspection tool. Tool failures are
// returned to the backend as error results, never surfaced to the caller.
func (d *Detector) runTool(ctx context.Context, repoPath, name string, input json.RawMessage) (string, bool) {
	for _, tool := range d.tools {
		if tool.Name() != name {
			continue
		}
		output, err := tool.Execute(repoPath, input)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("tool", name).Debug("Inspection tool failed")
			return err.Error(), true
		}
		return output, false
	}
	return "unknown tool: " + name, true
}

// anthropicTools exposes the read-only inspection tools plus the report
// tool whose input schema is the result schema itself.
func (d *Detector) anthropicTools(reportName string, reportSchema *jsonschema.Schema) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(d.tools)+1)
	for _, tool := range d.tools {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.GenerateSchema().Properties,
				},
			},
		})
	}

	params = append(params, anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        reportName,
			Description: anthropic.String("Submit the final detection result. Call exactly once, after your inspection is complete."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: reportSchema.Properties,
			},
		},
	})
	return params
}

// assistantParam rebuilds the assistant turn for the conversation history
// from the response's content blocks.
func assistantParam(response *anthropic.Message) anthropic.MessageParam {
	var blocks []anthropic.ContentBlockParamUnion
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			blocks = append(blocks, anthropic.NewTextBlock(block.Text))
		case "tool_use":
			blocks = append(blocks, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    block.ID,
					Name:  block.Name,
					Input: json.RawMessage(block.Input),
				},
			})
		}
	}
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleAssistant,
		Content: blocks,
	}
}
