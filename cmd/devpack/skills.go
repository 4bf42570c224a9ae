package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/devpack-ai/devpack/pkg/ide"
	"github.com/devpack-ai/devpack/pkg/presenter"
	"github.com/devpack-ai/devpack/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [repo-path]",
	Short: "List catalog or installed skills",
	Long: `List the skills available in the catalog, or the skills already
installed in a repository.

Examples:
  devpack skills
  devpack skills --catalog /path/to/catalog
  devpack skills --installed
  devpack skills --installed --ide cursor path/to/repo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSkills,
}

func init() {
	skillsCmd.Flags().Bool("installed", false, "List skills installed in the repository instead of the catalog")
	skillsCmd.Flags().String("ide", "", "IDE target for --installed (claude-code, cursor, vscode)")
	skillsCmd.Flags().String("catalog", "", "Skill catalog root (default ~/.devpack)")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
	installed, _ := cmd.Flags().GetBool("installed")

	if installed {
		repoPath := "."
		if len(args) > 0 {
			repoPath = args[0]
		}
		return listInstalledSkills(cmd, repoPath)
	}
	return listCatalogSkills(cmd)
}

func listCatalogSkills(cmd *cobra.Command) error {
	catalogRoot, err := resolveCatalogRoot(cmd)
	if err != nil {
		return err
	}

	catalog := skills.LoadSkills(cmd.Context(), catalogRoot)
	if len(catalog) == 0 {
		presenter.Info(fmt.Sprintf("No skills found in %s", filepath.Join(catalogRoot, "agent-skills")))
		return nil
	}

	printSkillTable(catalog)
	return nil
}

func listInstalledSkills(cmd *cobra.Command, repoPath string) error {
	target, err := resolveTarget(cmd, repoPath)
	if err != nil {
		return err
	}

	installed := skills.LoadInstalledSkills(repoPath, target)
	if len(installed) == 0 {
		presenter.Info(fmt.Sprintf("No skills installed for %s", target.Name))
		return nil
	}

	printSkillTable(installed)
	return nil
}

func printSkillTable(list []skills.Skill) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTAGS\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t----\t-----------")

	for _, skill := range list {
		description := skill.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, strings.Join(skill.Tags, ","), description)
	}
	tw.Flush()
}

// resolveCatalogRoot returns the --catalog flag value, falling back to
// ~/.devpack.
func resolveCatalogRoot(cmd *cobra.Command) (string, error) {
	catalog, _ := cmd.Flags().GetString("catalog")
	if catalog != "" {
		return catalog, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine home directory")
	}
	return filepath.Join(homeDir, ".devpack"), nil
}

// resolveTarget returns the --ide flag target, falling back to the single
// IDE already configured in the repo, then to the first supported target.
func resolveTarget(cmd *cobra.Command, repoPath string) (ide.Target, error) {
	id, _ := cmd.Flags().GetString("ide")
	if id != "" {
		return ide.ByID(id)
	}
	if target, ok := ide.DetectExisting(repoPath); ok {
		return target, nil
	}
	return ide.Targets[0], nil
}
