// Package detector implements static technology detection. It evaluates the
// registry catalog's indicators against a repository's file tree without any
// network access. Detection is a pure function of the catalog and the
// filesystem state: a single unreadable or malformed manifest never aborts a
// run, it just contributes no evidence.
package detector

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/devpack-ai/devpack/pkg/registry"
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

// DetectStack returns every catalog technology with at least one holding
// indicator, in catalog order. Results are not cached; the filesystem may
// change between calls.
func DetectStack(repoPath string) []stack.DetectedTechnology {
	var detected []stack.DetectedTechnology
	for _, tech := range registry.Technologies {
		for _, indicator := range tech.Indicators {
			if evaluate(repoPath, indicator) {
				detected = append(detected, tech.Detected())
				break
			}
		}
	}
	return detected
}

func evaluate(repoPath string, indicator registry.Indicator) bool {
	switch indicator.Kind {
	case registry.FileExists:
		_, err := os.Stat(filepath.Join(repoPath, indicator.File))
		return err == nil
	case registry.FileContains:
		return strings.Contains(readText(repoPath, indicator.File), indicator.Needle)
	case registry.PackageJSONDep:
		_, ok := packageJSONDeps(repoPath)[indicator.Needle]
		return ok
	case registry.PyprojectDep:
		return strings.Contains(pyprojectDeps(repoPath), indicator.Needle)
	}
	return false
}

// readText returns the lower-cased content of a file under repoPath, or ""
// if the file cannot be read. Lower-casing here keeps every substring
// indicator case-insensitive.
func readText(repoPath, name string) string {
	content, err := os.ReadFile(filepath.Join(repoPath, name))
	if err != nil {
		return ""
	}
	return strings.ToLower(string(content))
}

// packageJSONDeps returns the union of dependencies and devDependencies
// declared by package.json, or nil if the manifest is missing or malformed.
func packageJSONDeps(repoPath string) map[string]struct{} {
	content, err := os.ReadFile(filepath.Join(repoPath, "package.json"))
	if err != nil {
		return nil
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return nil
	}

	deps := make(map[string]struct{}, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		deps[name] = struct{}{}
	}
	for name := range manifest.DevDependencies {
		deps[name] = struct{}{}
	}
	return deps
}

// pyprojectDeps flattens the dependency declarations of pyproject.toml into
// a single lower-cased string, covering both PEP 621 project.dependencies
// and poetry's tool.poetry.dependencies table.
func pyprojectDeps(repoPath string) string {
	content, err := os.ReadFile(filepath.Join(repoPath, "pyproject.toml"))
	if err != nil {
		return ""
	}

	var manifest struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]toml.Primitive `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return ""
	}

	specs := make([]string, 0, len(manifest.Project.Dependencies)+len(manifest.Tool.Poetry.Dependencies))
	specs = append(specs, manifest.Project.Dependencies...)
	for name := range manifest.Tool.Poetry.Dependencies {
		specs = append(specs, name)
	}
	return strings.ToLower(strings.Join(specs, " "))
}
