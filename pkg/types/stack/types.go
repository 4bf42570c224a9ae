// Package stack defines the value types exchanged between the stack
// detectors, the skill matcher, and the rest of the CLI. All values are
// constructed fresh per detection run and never mutated afterwards.
package stack

import "strings"

// DetectedTechnology is a single technology found in a repository.
type DetectedTechnology struct {
	ID       string `json:"id" jsonschema:"description=Lowercase technology identifier from the permitted vocabulary"`
	Name     string `json:"name" jsonschema:"description=Human readable display name"`
	Frontend bool   `json:"is_frontend" jsonschema:"description=True only for client-side technologies"`
}

// DetectionResult is the lightweight outcome of a stack detection run.
type DetectionResult struct {
	Technologies []DetectedTechnology `json:"technologies" jsonschema:"description=Technologies detected in the repository"`
	Summary      string               `json:"summary" jsonschema:"description=One or two sentence description of the stack"`
}

// SetupCommands holds the key commands for working with a repository.
// Empty fields mean the command could not be determined.
type SetupCommands struct {
	Install string `json:"install" jsonschema:"description=Command that installs dependencies"`
	Dev     string `json:"dev" jsonschema:"description=Command that starts a development server"`
	Test    string `json:"test" jsonschema:"description=Command that runs the test suite"`
	Build   string `json:"build" jsonschema:"description=Command that produces a production build"`
}

// ProjectContext is the richer detection outcome used to seed agents.md.
type ProjectContext struct {
	Technologies       []DetectedTechnology `json:"technologies" jsonschema:"description=Technologies detected in the repository"`
	Summary            string               `json:"summary" jsonschema:"description=One or two sentence description of the stack"`
	DirectoryStructure string               `json:"directory_structure" jsonschema:"description=Condensed tree of the top level directories and their purpose"`
	SetupCommands      SetupCommands        `json:"setup_commands"`
	RuntimeVersions    []RuntimeVersion     `json:"runtime_versions" jsonschema:"description=Language or runtime versions pinned by the repository"`
}

// RuntimeVersion records a pinned language or runtime version, e.g.
// {Runtime: "python", Version: "3.12"}.
type RuntimeVersion struct {
	Runtime string `json:"runtime" jsonschema:"description=Runtime or language name"`
	Version string `json:"version" jsonschema:"description=Version constraint as declared by the repository"`
}

// HasFrontend reports whether any detected technology is client-side.
func HasFrontend(technologies []DetectedTechnology) bool {
	for _, tech := range technologies {
		if tech.Frontend {
			return true
		}
	}
	return false
}

// IDs returns the lower-cased ids of the detected technologies, in order.
func IDs(technologies []DetectedTechnology) []string {
	ids := make([]string, 0, len(technologies))
	for _, tech := range technologies {
		ids = append(ids, strings.ToLower(tech.ID))
	}
	return ids
}
