package agent

import (
	"fmt"
	"strings"

	"github.com/devpack-ai/devpack/pkg/registry"
)

const systemPrompt = `You are a technical architect analyzing a codebase to determine its technology stack.
You may only inspect the repository with the provided read-only tools; you cannot execute code or modify files.
When you have gathered enough evidence, submit your findings by calling the report tool exactly once.`

func stackPrompt() string {
	return fmt.Sprintf(`Inspect this repository and determine its technology stack.

Look at manifest files (package.json, pyproject.toml, requirements.txt, go.mod, Gemfile, Cargo.toml),
lockfiles, build configuration, and container/orchestration files before concluding.

Rules:
- Only report technology ids from this exact vocabulary: %s.
- Set is_frontend to true only for these ids: %s.
- Report each technology at most once.
- The summary is one or two sentences describing the stack.

When done, call %s with your findings.`,
		strings.Join(registry.KnownTechnologyIDs, ", "),
		strings.Join(registry.FrontendTechnologyIDs, ", "),
		reportStackTool)
}

func projectContextPrompt() string {
	return fmt.Sprintf(`Inspect this repository and build a project context summary.

Determine:
- The technology stack, following these rules: only report technology ids from this
  exact vocabulary: %s; set is_frontend to true only for these ids: %s; report each
  technology at most once.
- A condensed directory structure: the top-level directories and one line on what each holds.
- The key commands (install, dev server, test, build) as a developer would run them,
  read from manifests and CI configuration. Leave a command empty if it cannot be determined.
- Any runtime versions the repository pins (e.g. .python-version, engines in package.json, go directive).

When done, call %s with your findings.`,
		strings.Join(registry.KnownTechnologyIDs, ", "),
		strings.Join(registry.FrontendTechnologyIDs, ", "),
		reportContextTool)
}
