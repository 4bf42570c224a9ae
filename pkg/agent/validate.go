package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/devpack-ai/devpack/pkg/logger"
	"github.com/devpack-ai/devpack/pkg/registry"
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

// decodeStrict unmarshals raw into v, rejecting unknown fields on every
// nested object. The backend's output is already schema-constrained; this
// is the defense against non-conformance, not redundancy.
func decodeStrict(raw json.RawMessage, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// validateStack checks a report payload against the DetectionResult schema
// and normalizes its technology list.
func validateStack(ctx context.Context, raw json.RawMessage) (*stack.DetectionResult, error) {
	var result stack.DetectionResult
	if err := decodeStrict(raw, &result); err != nil {
		return nil, &SchemaValidationError{Schema: schemaStack, Reason: err.Error()}
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, &SchemaValidationError{Schema: schemaStack, Reason: "summary must not be empty"}
	}

	result.Technologies = normalizeTechnologies(ctx, result.Technologies)
	return &result, nil
}

// validateContext checks a report payload against the ProjectContext schema
// and normalizes its technology list.
func validateContext(ctx context.Context, raw json.RawMessage) (*stack.ProjectContext, error) {
	var result stack.ProjectContext
	if err := decodeStrict(raw, &result); err != nil {
		return nil, &SchemaValidationError{Schema: schemaContext, Reason: err.Error()}
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, &SchemaValidationError{Schema: schemaContext, Reason: "summary must not be empty"}
	}

	result.Technologies = normalizeTechnologies(ctx, result.Technologies)
	return &result, nil
}

// normalizeTechnologies enforces the detection contract on the backend's
// technology list: ids are lower-cased, identifiers outside the permitted
// vocabulary are filtered out (with a warning, never silently), the
// frontend flag is cleared outside its allow-list, and duplicates are
// dropped keeping the first occurrence.
func normalizeTechnologies(ctx context.Context, technologies []stack.DetectedTechnology) []stack.DetectedTechnology {
	seen := make(map[string]struct{}, len(technologies))
	normalized := make([]stack.DetectedTechnology, 0, len(technologies))

	for _, tech := range technologies {
		tech.ID = strings.ToLower(strings.TrimSpace(tech.ID))

		if !registry.KnownID(tech.ID) {
			logger.G(ctx).WithField("id", tech.ID).
				Warn("Agent reported a technology outside the permitted vocabulary; dropping it")
			continue
		}
		if _, dup := seen[tech.ID]; dup {
			continue
		}
		seen[tech.ID] = struct{}{}

		if tech.Frontend && !registry.FrontendID(tech.ID) {
			tech.Frontend = false
		}
		normalized = append(normalized, tech)
	}
	return normalized
}
