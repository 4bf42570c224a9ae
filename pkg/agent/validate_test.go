package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpack-ai/devpack/pkg/types/stack"
)

func TestValidateStackRejectsUnknownFields(t *testing.T) {
	_, err := validateStack(context.Background(), json.RawMessage(`{
		"technologies": [],
		"summary": "x",
		"confidence": 0.8
	}`))
	require.Error(t, err)
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, schemaStack, verr.Schema)
}

func TestValidateStackRejectsEmptySummary(t *testing.T) {
	_, err := validateStack(context.Background(), json.RawMessage(`{
		"technologies": [],
		"summary": "   "
	}`))
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "summary")
}

func TestValidateStackRejectsMalformedJSON(t *testing.T) {
	_, err := validateStack(context.Background(), json.RawMessage(`{"technologies": [`))
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateContextRejectsUnknownNestedFields(t *testing.T) {
	_, err := validateContext(context.Background(), json.RawMessage(`{
		"technologies": [],
		"summary": "x",
		"directory_structure": "",
		"setup_commands": {"install": "", "dev": "", "test": "", "build": "", "deploy": "kubectl apply"},
		"runtime_versions": []
	}`))
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, schemaContext, verr.Schema)
}

func TestNormalizeTechnologies(t *testing.T) {
	ctx := context.Background()

	t.Run("lower-cases and trims ids", func(t *testing.T) {
		out := normalizeTechnologies(ctx, []stack.DetectedTechnology{
			{ID: "  Django ", Name: "Django"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "django", out[0].ID)
	})

	t.Run("filters ids outside the vocabulary", func(t *testing.T) {
		out := normalizeTechnologies(ctx, []stack.DetectedTechnology{
			{ID: "fortran", Name: "Fortran"},
			{ID: "rust", Name: "Rust"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "rust", out[0].ID)
	})

	t.Run("drops duplicates keeping the first", func(t *testing.T) {
		out := normalizeTechnologies(ctx, []stack.DetectedTechnology{
			{ID: "python", Name: "Python"},
			{ID: "PYTHON", Name: "Python 3"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "Python", out[0].Name)
	})

	t.Run("clears frontend flag outside the allow-list", func(t *testing.T) {
		out := normalizeTechnologies(ctx, []stack.DetectedTechnology{
			{ID: "postgres", Name: "PostgreSQL", Frontend: true},
			{ID: "vue", Name: "Vue", Frontend: true},
		})
		require.Len(t, out, 2)
		assert.False(t, out[0].Frontend)
		assert.True(t, out[1].Frontend)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		out := normalizeTechnologies(ctx, nil)
		assert.Empty(t, out)
	})
}
