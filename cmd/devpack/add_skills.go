package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/devpack-ai/devpack/pkg/agent"
	"github.com/devpack-ai/devpack/pkg/detector"
	"github.com/devpack-ai/devpack/pkg/installer"
	"github.com/devpack-ai/devpack/pkg/logger"
	"github.com/devpack-ai/devpack/pkg/presenter"
	"github.com/devpack-ai/devpack/pkg/skills"
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

var addSkillsCmd = &cobra.Command{
	Use:   "add-skills [repo-path]",
	Short: "Detect your stack and add matching agent skills to the repo",
	Long: `Detect the repository's technology stack and install the matching agent
skill bundles, ignore-file entries, agents.md, and README section.

Detection uses an Anthropic-backed agent by default and falls back to
static manifest scanning when no API key is configured.

Examples:
  devpack add-skills
  devpack add-skills path/to/repo
  devpack add-skills --detector static
  devpack add-skills --yes --ide cursor
  devpack add-skills --skills django-models,api-testing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddSkills,
}

func init() {
	addSkillsCmd.Flags().String("detector", "agent", "Detection strategy (agent or static)")
	addSkillsCmd.Flags().BoolP("yes", "y", false, "Install all matched skills without prompting")
	addSkillsCmd.Flags().StringSlice("skills", nil, "Install only these skill ids (skips the prompt)")
	addSkillsCmd.Flags().String("ide", "", "IDE target (claude-code, cursor, vscode); default is the one already configured in the repo")
	addSkillsCmd.Flags().String("catalog", "", "Skill catalog root (default ~/.devpack)")
	addSkillsCmd.Flags().Bool("no-readme", false, "Skip updating the README skills section")
	rootCmd.AddCommand(addSkillsCmd)
}

func runAddSkills(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return errors.Wrap(err, "failed to resolve repository path")
	}

	detected, projectContext, err := detectStack(ctx, cmd, repoPath)
	if err != nil {
		return err
	}

	if len(detected) > 0 {
		names := make([]string, 0, len(detected))
		for _, tech := range detected {
			names = append(names, tech.Name)
		}
		presenter.Info(fmt.Sprintf("Detected stack: %s", strings.Join(names, ", ")))
	} else {
		presenter.Info("No stack detected, showing all available skills.")
	}

	catalogRoot, err := resolveCatalogRoot(cmd)
	if err != nil {
		return err
	}
	catalog := skills.LoadSkills(ctx, catalogRoot)
	matched := skills.MatchSkills(catalog, detected)
	if len(matched) == 0 {
		presenter.Info("No applicable skills found for this stack.")
		return nil
	}

	selected, err := selectSkills(cmd, matched)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		presenter.Info("No skills selected. Nothing to do.")
		return nil
	}

	target, err := resolveTarget(cmd, repoPath)
	if err != nil {
		return err
	}
	presenter.Info(fmt.Sprintf("Target IDE: %s", target.Name))

	written, err := installer.WriteSkills(selected, repoPath, target)
	if err != nil {
		return err
	}
	presenter.Success(fmt.Sprintf("Added %d skill(s) to %s/", len(written), target.SkillPath))
	for _, path := range written {
		presenter.Info(fmt.Sprintf("  + %s", filepath.Base(path)))
	}

	ignoreAction, err := installer.WriteIgnoreFiles(repoPath, target)
	if err != nil {
		return err
	}
	switch ignoreAction {
	case installer.ActionCreated:
		presenter.Success(fmt.Sprintf("Created %s", target.IgnoreFile))
	case installer.ActionUpdated:
		presenter.Success(fmt.Sprintf("Updated %s with baseline secret patterns", target.IgnoreFile))
	}

	if projectContext != nil {
		path, action, err := installer.WriteAgentsMD(repoPath, projectContext, selected)
		if err != nil {
			return err
		}
		if action == installer.ActionCreated {
			presenter.Success(fmt.Sprintf("Created %s", filepath.Base(path)))
		} else {
			presenter.Info("agents.md already exists, leaving it untouched.")
		}
	}

	noReadme, _ := cmd.Flags().GetBool("no-readme")
	if !noReadme {
		if _, err := installer.UpdateReadme(repoPath, selected, target); err != nil {
			return err
		}
		presenter.Success("Updated README with skills documentation.")
	}

	return nil
}

// detectStack runs the chosen detection strategy. Agent-backed detection
// also yields the project context used for agents.md; the static scanner
// yields no context. A missing credential downgrades to static with a
// warning instead of failing the run.
func detectStack(ctx context.Context, cmd *cobra.Command, repoPath string) ([]stack.DetectedTechnology, *stack.ProjectContext, error) {
	strategy, _ := cmd.Flags().GetString("detector")

	switch strategy {
	case "static":
		presenter.Info("Scanning manifest files...")
		return detector.DetectStack(repoPath), nil, nil
	case "agent":
	default:
		return nil, nil, errors.Errorf("unknown detector %q (expected agent or static)", strategy)
	}

	agentDetector, err := agent.NewDetector()
	if errors.Is(err, agent.ErrMissingCredential) {
		presenter.Warning("No Anthropic API key found; falling back to static detection. Run 'devpack configure' to enable agent-backed detection.")
		return detector.DetectStack(repoPath), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	presenter.Info("Analyzing your stack with Claude...")
	projectContext, err := agentDetector.DetectProjectContext(ctx, repoPath)
	if err != nil {
		logger.G(ctx).WithError(err).Debug("Agent-backed detection failed")
		return nil, nil, errors.Wrap(err, "agent-backed detection failed")
	}
	return projectContext.Technologies, projectContext, nil
}

// selectSkills narrows the matched skills to the user's choice: an explicit
// --skills list, everything with --yes, or a confirmation prompt.
func selectSkills(cmd *cobra.Command, matched []skills.Skill) ([]skills.Skill, error) {
	requested, _ := cmd.Flags().GetStringSlice("skills")
	if len(requested) > 0 {
		return pickByID(matched, requested)
	}

	presenter.Section("Matched skills")
	for _, skill := range matched {
		presenter.Info(fmt.Sprintf("  %s - %s", skill.Name, truncate(skill.Description, 80)))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return matched, nil
	}

	answer := presenter.Prompt(fmt.Sprintf("Install these %d skill(s)?", len(matched)), "y", "n")
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		return nil, nil
	}
	return matched, nil
}

func pickByID(matched []skills.Skill, requested []string) ([]skills.Skill, error) {
	byID := make(map[string]skills.Skill, len(matched))
	available := make([]string, 0, len(matched))
	for _, skill := range matched {
		byID[skill.ID] = skill
		available = append(available, skill.ID)
	}

	var selected []skills.Skill
	for _, id := range requested {
		id = strings.TrimSpace(id)
		skill, ok := byID[id]
		if !ok {
			return nil, errors.Errorf("skill %q does not match this stack (available: %s)",
				id, strings.Join(available, ", "))
		}
		selected = append(selected, skill)
	}
	return selected, nil
}

func truncate(text string, maxLen int) string {
	if len(text) > maxLen {
		return text[:maxLen-3] + "..."
	}
	return text
}
