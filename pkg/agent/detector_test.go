package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend replays scripted responses and records every request.
type fakeBackend struct {
	responses []*anthropic.Message
	requests  []anthropic.MessageNewParams
	err       error
}

func (f *fakeBackend) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.requests = append(f.requests, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fakeBackend: no scripted responses left")
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}

func textMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
	}
}

func toolUseMessage(id, name, input string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{
			Type:  "tool_use",
			ID:    id,
			Name:  name,
			Input: []byte(input),
		}},
	}
}

func newTestDetector(t *testing.T, backend *fakeBackend) *Detector {
	t.Helper()
	detector, err := NewDetector(
		WithMessageService(backend),
		WithAuditDir(filepath.Join(t.TempDir(), "audit")),
	)
	require.NoError(t, err)
	return detector
}

func TestDetectTechStackSuccess(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{
			"technologies": [
				{"id": "python", "name": "Python", "is_frontend": false},
				{"id": "django", "name": "Django", "is_frontend": false}
			],
			"summary": "A Django web application."
		}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "A Django web application.", result.Summary)
	require.Len(t, result.Technologies, 2)
	assert.Equal(t, "python", result.Technologies[0].ID)
	assert.Equal(t, "django", result.Technologies[1].ID)
}

func TestDetectTechStackNormalizesPayload(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{
			"technologies": [
				{"id": "Python", "name": "Python", "is_frontend": true},
				{"id": "python", "name": "Python again", "is_frontend": false},
				{"id": "cobol", "name": "COBOL", "is_frontend": false},
				{"id": "react", "name": "React", "is_frontend": true}
			],
			"summary": "Mixed bag."
		}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), t.TempDir())
	require.NoError(t, err)

	// Out-of-vocabulary ids filtered, duplicates dropped keeping the first,
	// frontend flag cleared outside the allow-list.
	require.Len(t, result.Technologies, 2)
	assert.Equal(t, "python", result.Technologies[0].ID)
	assert.False(t, result.Technologies[0].Frontend)
	assert.Equal(t, "react", result.Technologies[1].ID)
	assert.True(t, result.Technologies[1].Frontend)
}

func TestDetectTechStackExhaustion(t *testing.T) {
	// The backend keeps submitting a payload with an unknown field.
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{"technologies": [], "summary": "x", "confidence": 0.9}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), t.TempDir())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAgentExhausted))
	// Never a silently empty technology list.
	assert.False(t, errors.Is(err, ErrAgentNoOutput))
}

func TestDetectTechStackNoOutput(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		textMessage("I could not figure this out."),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), t.TempDir())
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrAgentNoOutput))
}

func TestDetectTechStackTransportError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	detector := newTestDetector(t, backend)

	_, err := detector.DetectTechStack(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAgentExhausted))
	assert.False(t, errors.Is(err, ErrAgentNoOutput))
}

func TestDetectTechStackToolRoundtrip(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "requirements.txt"), []byte("fastapi\n"), 0o644))

	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", "file_read", `{"path": "requirements.txt"}`),
		toolUseMessage("tu_2", reportStackTool, `{
			"technologies": [{"id": "fastapi", "name": "FastAPI", "is_frontend": false}],
			"summary": "A FastAPI service."
		}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, result.Technologies, 1)
	assert.Equal(t, "fastapi", result.Technologies[0].ID)

	// The second request must carry the tool result back to the backend.
	require.Len(t, backend.requests, 2)
	lastMessage := backend.requests[1].Messages[len(backend.requests[1].Messages)-1]
	require.NotEmpty(t, lastMessage.Content)
	assert.NotNil(t, lastMessage.Content[0].OfToolResult)
}

func TestDetectTechStackRetriesAfterInvalidReport(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{"technologies": [], "summary": ""}`),
		toolUseMessage("tu_2", reportStackTool, `{
			"technologies": [{"id": "go", "name": "Go", "is_frontend": false}],
			"summary": "A Go module."
		}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectTechStack(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "A Go module.", result.Summary)
	require.Len(t, backend.requests, 2)
}

func TestDetectProjectContext(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportContextTool, `{
			"technologies": [{"id": "django", "name": "Django", "is_frontend": false}],
			"summary": "A Django monolith.",
			"directory_structure": "src/ - application code\ntests/ - test suite",
			"setup_commands": {"install": "pip install -r requirements.txt", "dev": "python manage.py runserver", "test": "pytest", "build": ""},
			"runtime_versions": [{"runtime": "python", "version": "3.12"}]
		}`),
	}}
	detector := newTestDetector(t, backend)

	result, err := detector.DetectProjectContext(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "A Django monolith.", result.Summary)
	assert.Equal(t, "pytest", result.SetupCommands.Test)
	require.Len(t, result.RuntimeVersions, 1)
	assert.Equal(t, "python", result.RuntimeVersions[0].Runtime)
}

func TestNewDetectorMissingCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	detector, err := NewDetector()
	assert.Nil(t, detector)
	assert.True(t, errors.Is(err, ErrMissingCredential))
}

func TestAuditRecordWrittenOnFailure(t *testing.T) {
	auditDir := filepath.Join(t.TempDir(), "audit")
	backend := &fakeBackend{responses: []*anthropic.Message{
		textMessage("no report"),
	}}
	detector, err := NewDetector(WithMessageService(backend), WithAuditDir(auditDir))
	require.NoError(t, err)

	_, err = detector.DetectTechStack(context.Background(), t.TempDir())
	require.Error(t, err)

	entries, err := os.ReadDir(auditDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "response_"))

	content, err := os.ReadFile(filepath.Join(auditDir, entries[0].Name()))
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(content, &record))
	assert.Equal(t, "no_output", record["outcome"])
	assert.NotZero(t, record["prompt_length"])
}

func TestAuditRecordWrittenOnSuccess(t *testing.T) {
	auditDir := filepath.Join(t.TempDir(), "audit")
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{"technologies": [], "summary": "Nothing recognizable."}`),
	}}
	detector, err := NewDetector(WithMessageService(backend), WithAuditDir(auditDir))
	require.NoError(t, err)

	_, err = detector.DetectTechStack(context.Background(), t.TempDir())
	require.NoError(t, err)

	entries, err := os.ReadDir(auditDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(auditDir, entries[0].Name()))
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(content, &record))
	assert.Equal(t, "success", record["outcome"])
	assert.Contains(t, record["raw_payload"], "Nothing recognizable")
}

func TestRequestGrantsOnlyReadOnlyTools(t *testing.T) {
	backend := &fakeBackend{responses: []*anthropic.Message{
		toolUseMessage("tu_1", reportStackTool, `{"technologies": [], "summary": "Empty."}`),
	}}
	detector := newTestDetector(t, backend)

	_, err := detector.DetectTechStack(context.Background(), t.TempDir())
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	var names []string
	for _, tool := range backend.requests[0].Tools {
		names = append(names, tool.OfTool.Name)
	}
	assert.ElementsMatch(t, []string{"file_read", "list_files", "grep", reportStackTool}, names)
}
