// Package ide defines the supported IDE / agent targets and where each one
// expects installed skills and ignore files inside a target repository.
package ide

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Target describes one supported IDE or coding agent.
type Target struct {
	ID         string
	Name       string
	SkillPath  string // relative path inside the repo where skills are placed
	IgnoreFile string // AI ignore file honored by the IDE, "" if none
	InvokeHint string // how a user invokes an installed skill; {name} is the skill id
}

// Supported targets.
var (
	ClaudeCode = Target{
		ID:         "claude-code",
		Name:       "Claude Code",
		SkillPath:  ".claude/skills",
		IgnoreFile: ".claudeignore",
		InvokeHint: "Type `/{name}` in your Claude Code session.",
	}
	Cursor = Target{
		ID:         "cursor",
		Name:       "Cursor",
		SkillPath:  ".cursor/skills",
		IgnoreFile: ".cursorignore",
		InvokeHint: "Use `@{name}` in a Cursor chat.",
	}
	VSCode = Target{
		ID:         "vscode",
		Name:       "VS Code Copilot",
		SkillPath:  ".agents/skills",
		IgnoreFile: ".copilotignore",
		InvokeHint: "Reference `#{name}` in a VS Code Copilot chat.",
	}
)

// Targets lists all supported targets in presentation order.
var Targets = []Target{ClaudeCode, Cursor, VSCode}

// ByID returns the target with the given id.
func ByID(id string) (Target, error) {
	for _, target := range Targets {
		if target.ID == id {
			return target, nil
		}
	}
	return Target{}, errors.Errorf("unknown IDE target %q", id)
}

// InvokeHintFor renders the target's invocation hint for a skill id.
func (t Target) InvokeHintFor(skillID string) string {
	return strings.ReplaceAll(t.InvokeHint, "{name}", skillID)
}

// ConfigDir returns the top-level config directory the target owns inside a
// repo, e.g. ".claude" for the ".claude/skills" skill path.
func (t Target) ConfigDir() string {
	parts := strings.SplitN(t.SkillPath, "/", 2)
	return parts[0]
}

// DetectExisting returns the target whose config directory already exists in
// the repo, but only when exactly one does; ambiguity yields no default.
func DetectExisting(repoPath string) (Target, bool) {
	var found []Target
	for _, target := range Targets {
		info, err := os.Stat(filepath.Join(repoPath, target.ConfigDir()))
		if err == nil && info.IsDir() {
			found = append(found, target)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Target{}, false
}
