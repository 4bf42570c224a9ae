package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpack-ai/devpack/pkg/ide"
)

func writeSkill(t *testing.T, skillsDir, id, frontmatter string) string {
	t.Helper()
	skillDir := filepath.Join(skillsDir, id)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	content := frontmatter + "\n# " + id + "\n\nInstructions go here.\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
	return skillDir
}

func TestLoadSkills(t *testing.T) {
	catalog := t.TempDir()
	skillsDir := filepath.Join(catalog, "agent-skills")

	writeSkill(t, skillsDir, "django-best-practices", `---
name: Django Best Practices
description: Conventions for Django apps.
metadata:
  tags:
    - Django
    - python
---`)
	writeSkill(t, skillsDir, "accessibility-review", `---
name: Accessibility Review
description: WCAG review checklist.
metadata:
  tags: [frontend]
---`)

	skills := LoadSkills(context.Background(), catalog)
	require.Len(t, skills, 2)

	// Lexicographic by directory name.
	assert.Equal(t, "accessibility-review", skills[0].ID)
	assert.Equal(t, "django-best-practices", skills[1].ID)

	django := skills[1]
	assert.Equal(t, "Django Best Practices", django.Name)
	assert.Equal(t, "Conventions for Django apps.", django.Description)
	assert.Equal(t, filepath.Join(skillsDir, "django-best-practices"), django.Directory)
	// Tags are lower-cased on load.
	assert.Equal(t, []string{"django", "python"}, django.Tags)

	assert.Equal(t, []string{"frontend"}, skills[0].Tags)
}

func TestLoadSkillsMissingCatalogDir(t *testing.T) {
	assert.Empty(t, LoadSkills(context.Background(), t.TempDir()))
}

func TestLoadSkillsNoTags(t *testing.T) {
	catalog := t.TempDir()
	writeSkill(t, filepath.Join(catalog, "agent-skills"), "plain-skill", `---
name: Plain Skill
description: No tags declared.
---`)

	skills := LoadSkills(context.Background(), catalog)
	require.Len(t, skills, 1)
	assert.Empty(t, skills[0].Tags)
}

func TestLoadSkillsPartialFailure(t *testing.T) {
	catalog := t.TempDir()
	skillsDir := filepath.Join(catalog, "agent-skills")

	writeSkill(t, skillsDir, "good-skill", `---
name: Good Skill
description: Loads fine.
---`)
	// Bundle without a SKILL.md at all.
	require.NoError(t, os.MkdirAll(filepath.Join(skillsDir, "empty-bundle"), 0o755))

	skills := LoadSkills(context.Background(), catalog)
	require.Len(t, skills, 1)
	assert.Equal(t, "good-skill", skills[0].ID)
}

func TestLoadSkillsSkipsMalformedBundles(t *testing.T) {
	catalog := t.TempDir()
	skillsDir := filepath.Join(catalog, "agent-skills")

	writeSkill(t, skillsDir, "no-frontmatter", "no markers here")
	writeSkill(t, skillsDir, "missing-name", `---
description: Name is absent.
---`)
	writeSkill(t, skillsDir, "missing-description", `---
name: Nameless
---`)
	writeSkill(t, skillsDir, "valid", `---
name: Valid
description: Survives the scan.
---`)

	skills := LoadSkills(context.Background(), catalog)
	require.Len(t, skills, 1)
	assert.Equal(t, "valid", skills[0].ID)
}

func installSkill(t *testing.T, repo string, target ide.Target, id, frontmatter string) {
	t.Helper()
	writeSkill(t, filepath.Join(repo, filepath.FromSlash(target.SkillPath)), id, frontmatter)
}

func TestLoadInstalledSkills(t *testing.T) {
	repo := t.TempDir()
	installSkill(t, repo, ide.ClaudeCode, "my-skill", `---
name: My Skill
description: Does stuff.
---`)

	skills := LoadInstalledSkills(repo, ide.ClaudeCode)
	require.Len(t, skills, 1)
	assert.Equal(t, "my-skill", skills[0].ID)
	assert.Equal(t, "My Skill", skills[0].Name)
	assert.Equal(t, filepath.Join(repo, ".claude", "skills", "my-skill"), skills[0].Directory)
}

func TestLoadInstalledSkillsScopedToTarget(t *testing.T) {
	repo := t.TempDir()
	installSkill(t, repo, ide.ClaudeCode, "skill-a", "---\nname: A\ndescription: a.\n---")
	installSkill(t, repo, ide.Cursor, "skill-b", "---\nname: B\ndescription: b.\n---")

	claude := LoadInstalledSkills(repo, ide.ClaudeCode)
	cursor := LoadInstalledSkills(repo, ide.Cursor)
	require.Len(t, claude, 1)
	require.Len(t, cursor, 1)
	assert.Equal(t, "skill-a", claude[0].ID)
	assert.Equal(t, "skill-b", cursor[0].ID)
}

func TestLoadInstalledSkillsLenientName(t *testing.T) {
	repo := t.TempDir()
	installSkill(t, repo, ide.ClaudeCode, "unnamed-skill", `---
description: Installed without a name.
---`)

	skills := LoadInstalledSkills(repo, ide.ClaudeCode)
	require.Len(t, skills, 1)
	assert.Equal(t, "unnamed-skill", skills[0].Name)
}

func TestLoadInstalledSkillsSilentSkip(t *testing.T) {
	repo := t.TempDir()
	installSkill(t, repo, ide.ClaudeCode, "broken", "not a skill file")
	require.NoError(t, os.MkdirAll(
		filepath.Join(repo, ".claude", "skills", "orphan"), 0o755))

	assert.Empty(t, LoadInstalledSkills(repo, ide.ClaudeCode))
}

func TestLoadInstalledSkillsEmptyWhenNoDir(t *testing.T) {
	assert.Empty(t, LoadInstalledSkills(t.TempDir(), ide.ClaudeCode))
}
