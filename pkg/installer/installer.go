// Package installer performs every repository write: skill bundle copies,
// AI ignore files, agents.md, and the README skills section. Detection and
// matching never touch the repo; this package does.
package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/devpack-ai/devpack/pkg/ide"
	"github.com/devpack-ai/devpack/pkg/skills"
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

// Action describes what a write did to an existing file.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

const (
	sectionMarker    = "<!-- devpack-skills -->"
	sectionEndMarker = "<!-- /devpack-skills -->"
	devpackComment   = "# Added by devpack"
	agentsFileName   = "agents.md"
)

// ignoreBaseline is the set of secret-bearing patterns every AI ignore file
// should carry. Merging never removes user entries.
var ignoreBaseline = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*.p12",
	"secrets/",
}

// WriteSkills copies each skill bundle into the IDE-specific skills
// directory under repoPath and returns the destination directories.
func WriteSkills(selected []skills.Skill, repoPath string, target ide.Target) ([]string, error) {
	base := filepath.Join(repoPath, filepath.FromSlash(target.SkillPath))
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create skills directory")
	}

	var written []string
	for _, skill := range selected {
		dest := filepath.Join(base, skill.ID)
		if err := copyDir(skill.Directory, dest); err != nil {
			return written, errors.Wrapf(err, "failed to install skill %q", skill.ID)
		}
		written = append(written, dest)
	}
	return written, nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// WriteIgnoreFiles creates or merges the AI ignore file for the target IDE.
// Existing user lines are never removed; missing baseline entries are
// appended under a comment.
func WriteIgnoreFiles(repoPath string, target ide.Target) (Action, error) {
	path := filepath.Join(repoPath, target.IgnoreFile)

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content := strings.Join(ignoreBaseline, "\n") + "\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", errors.Wrapf(err, "failed to create %s", target.IgnoreFile)
		}
		return ActionCreated, nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", target.IgnoreFile)
	}

	existingLines := make(map[string]struct{})
	for _, line := range strings.Split(string(existing), "\n") {
		existingLines[strings.TrimSpace(line)] = struct{}{}
	}

	var missing []string
	for _, entry := range ignoreBaseline {
		if _, ok := existingLines[entry]; !ok {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return ActionSkipped, nil
	}

	content := strings.TrimRight(string(existing), "\n") +
		"\n" + devpackComment + "\n" + strings.Join(missing, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to update %s", target.IgnoreFile)
	}
	return ActionUpdated, nil
}

// WriteAgentsMD renders agents.md from the project context and the selected
// skills. An existing agents.md is left untouched.
func WriteAgentsMD(repoPath string, context *stack.ProjectContext, selected []skills.Skill) (string, Action, error) {
	path := filepath.Join(repoPath, agentsFileName)
	if _, err := os.Stat(path); err == nil {
		return path, ActionSkipped, nil
	}

	content := buildAgentsMD(context, selected)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", errors.Wrap(err, "failed to write agents.md")
	}
	return path, ActionCreated, nil
}

func buildAgentsMD(context *stack.ProjectContext, selected []skills.Skill) string {
	var b strings.Builder
	b.WriteString("# agents.md\n\n")

	b.WriteString("## Stack Summary\n\n")
	b.WriteString(context.Summary)
	b.WriteString("\n\n")

	if context.DirectoryStructure != "" {
		b.WriteString("## Directory Structure\n\n```\n")
		b.WriteString(context.DirectoryStructure)
		b.WriteString("\n```\n\n")
	}

	cmds := context.SetupCommands
	if cmds.Install != "" || cmds.Dev != "" || cmds.Test != "" || cmds.Build != "" {
		b.WriteString("## Key Commands\n\n")
		writeCommand(&b, "Install", cmds.Install)
		writeCommand(&b, "Dev server", cmds.Dev)
		writeCommand(&b, "Test", cmds.Test)
		writeCommand(&b, "Build", cmds.Build)
		b.WriteString("\n")
	}

	if len(context.RuntimeVersions) > 0 {
		b.WriteString("## Runtime Versions\n\n")
		for _, rv := range context.RuntimeVersions {
			fmt.Fprintf(&b, "- %s %s\n", rv.Runtime, rv.Version)
		}
		b.WriteString("\n")
	}

	if len(selected) > 0 {
		b.WriteString("## Installed Skills\n\n")
		b.WriteString("| Skill | Description |\n")
		b.WriteString("|---|---|\n")
		for _, skill := range selected {
			fmt.Fprintf(&b, "| `%s` | %s |\n", skill.ID, escapePipes(skill.Description))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeCommand(b *strings.Builder, label, command string) {
	if command == "" {
		return
	}
	fmt.Fprintf(b, "- **%s:** `%s`\n", label, command)
}

// UpdateReadme appends or replaces the marker-delimited Agent Skills section
// in the repository README. A missing README is created as README.md.
func UpdateReadme(repoPath string, selected []skills.Skill, target ide.Target) (string, error) {
	path := findReadme(repoPath)

	var existing string
	content, err := os.ReadFile(path)
	if err == nil {
		existing = string(content)
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "failed to read README")
	}

	section := buildReadmeSection(selected, target)

	var updated string
	if strings.Contains(existing, sectionMarker) {
		updated = replaceSection(existing, section)
	} else {
		separator := ""
		if existing != "" && !strings.HasSuffix(existing, "\n\n") {
			separator = "\n\n"
		}
		updated = existing + separator + section + "\n"
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write README")
	}
	return path, nil
}

func findReadme(repoPath string) string {
	for _, name := range []string{"README.md", "readme.md", "Readme.md"} {
		candidate := filepath.Join(repoPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(repoPath, "README.md")
}

func buildReadmeSection(selected []skills.Skill, target ide.Target) string {
	lines := []string{
		sectionMarker,
		"",
		"## Agent Skills",
		"",
		fmt.Sprintf("This repo includes %d agent skill(s) added by [devpack](https://github.com/devpack-ai/devpack).", len(selected)),
		"",
		"| Skill | Description | How to use |",
		"| ----- | ----------- | ---------- |",
	}

	for _, skill := range selected {
		hint := target.InvokeHintFor(skill.ID)
		description := firstSentence(skill.Description)
		lines = append(lines, fmt.Sprintf("| **%s** | %s | %s |",
			escapePipes(skill.Name), escapePipes(description), hint))
	}

	lines = append(lines, "", sectionEndMarker)
	return strings.Join(lines, "\n")
}

func replaceSection(content, section string) string {
	start := strings.Index(content, sectionMarker)
	end := strings.Index(content, sectionEndMarker)
	if start == -1 || end == -1 {
		return content + "\n\n" + section + "\n"
	}
	end += len(sectionEndMarker)
	return content[:start] + section + content[end:]
}

func firstSentence(description string) string {
	if idx := strings.Index(description, "."); idx != -1 {
		return description[:idx]
	}
	return description
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
