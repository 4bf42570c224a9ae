package skills

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/devpack-ai/devpack/pkg/ide"
	"github.com/devpack-ai/devpack/pkg/logger"
)

const (
	skillFileName    = "SKILL.md"
	catalogSubdir    = "agent-skills"
	metadataField    = "metadata"
	tagsField        = "tags"
	nameField        = "name"
	descriptionField = "description"
)

// LoadSkills scans <catalogRoot>/agent-skills and returns every valid skill
// bundle, ordered lexicographically by directory name. A malformed bundle is
// logged as a warning and skipped; it never aborts the scan. A missing or
// unreadable catalog directory yields an empty result.
func LoadSkills(ctx context.Context, catalogRoot string) []Skill {
	skillsDir := filepath.Join(catalogRoot, catalogSubdir)

	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}

	var skills []Skill
	for _, entry := range entries {
		skillDir := filepath.Join(skillsDir, entry.Name())

		info, err := os.Stat(skillDir)
		if err != nil || !info.IsDir() {
			continue
		}

		if _, err := os.Stat(filepath.Join(skillDir, skillFileName)); err != nil {
			continue
		}

		skill, err := loadSkill(skillDir)
		if err == nil && skill.Name == "" {
			err = errors.New("skill name is required in frontmatter")
		}
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", entry.Name()).
				Warn("Skipping malformed skill bundle")
			continue
		}
		skills = append(skills, skill)
	}

	return skills
}

// LoadInstalledSkills applies the same parse against the IDE-specific skills
// directory inside a target repository. Installed skills are best-effort
// provenance rather than authoritative catalog data: a missing name falls
// back to the directory name and malformed entries are skipped silently.
func LoadInstalledSkills(repoPath string, target ide.Target) []Skill {
	skillsDir := filepath.Join(repoPath, filepath.FromSlash(target.SkillPath))

	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}

	var skills []Skill
	for _, entry := range entries {
		skillDir := filepath.Join(skillsDir, entry.Name())

		info, err := os.Stat(skillDir)
		if err != nil || !info.IsDir() {
			continue
		}

		if _, err := os.Stat(filepath.Join(skillDir, skillFileName)); err != nil {
			continue
		}

		skill, err := loadSkill(skillDir)
		if err != nil {
			continue
		}
		if skill.Name == "" {
			skill.Name = entry.Name()
		}
		skills = append(skills, skill)
	}

	return skills
}

// loadSkill parses a single bundle's SKILL.md frontmatter. The frontmatter
// block is the text between a marker line at the very start of the file and
// the next marker line; the rest of the file is documentation body and is
// not consumed here.
func loadSkill(skillDir string) (Skill, error) {
	content, err := os.ReadFile(filepath.Join(skillDir, skillFileName))
	if err != nil {
		return Skill{}, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return Skill{}, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return Skill{}, errors.New("missing frontmatter")
	}

	name, _ := metaData[nameField].(string)
	description, _ := metaData[descriptionField].(string)
	if description == "" {
		return Skill{}, errors.New("skill description is required in frontmatter")
	}

	skill := Skill{
		ID:          filepath.Base(skillDir),
		Name:        name,
		Description: description,
		Directory:   skillDir,
		Tags:        extractTags(metaData),
	}
	return skill, nil
}

// extractTags reads the nested metadata.tags list. Absent or null collapses
// to no tags; tag strings are lower-cased for case-insensitive matching.
func extractTags(metaData map[string]any) []string {
	nested, ok := asStringKeyedMap(metaData[metadataField])
	if !ok {
		return nil
	}

	rawTags, ok := nested[tagsField].([]any)
	if !ok {
		return nil
	}

	var tags []string
	for _, raw := range rawTags {
		if tag, ok := raw.(string); ok && tag != "" {
			tags = append(tags, strings.ToLower(tag))
		}
	}
	return tags
}

// asStringKeyedMap normalizes the two map shapes YAML decoders produce for
// nested objects.
func asStringKeyedMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			if key, ok := k.(string); ok {
				out[key] = v
			}
		}
		return out, true
	default:
		return nil, false
	}
}
