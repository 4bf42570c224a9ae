// Package skills loads agent-skill bundles from a catalog directory and
// matches them against a detected technology stack. Skills are packaged as
// directories containing a SKILL.md file with YAML frontmatter describing
// the skill's purpose and relevance tags.
package skills

// Reserved relevance tags understood by the matcher.
const (
	// TagGeneral marks a skill that is relevant to every stack.
	TagGeneral = "general"
	// TagFrontend marks a skill that is relevant whenever the stack
	// contains at least one client-side technology.
	TagFrontend = "frontend"
)

// Skill represents a loaded skill bundle. ID, Name and Description are
// immutable once loaded; Directory points into externally owned storage.
type Skill struct {
	ID          string   // directory name of the bundle
	Name        string   // display name from frontmatter
	Description string   // short description from frontmatter
	Directory   string   // full path to the skill directory
	Tags        []string // lower-cased relevance tags, may be empty
}

// HasTag reports whether the skill declares the given (lower-case) tag.
func (s Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
