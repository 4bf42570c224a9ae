package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// inspectTool is a read-only capability granted to the backend over the
// target repository. Tools never write, execute, or leave the repo root.
type inspectTool interface {
	Name() string
	Description() string
	GenerateSchema() *jsonschema.Schema
	Execute(repoPath string, input json.RawMessage) (string, error)
}

func inspectTools() []inspectTool {
	return []inspectTool{
		&fileReadTool{},
		&listFilesTool{},
		&grepTool{},
	}
}

const (
	maxFileReadBytes = 100 * 1024
	maxListedFiles   = 200
	maxGrepMatches   = 100
)

// resolveInRepo joins a tool-supplied relative path against the repo root
// and rejects anything that escapes it.
func resolveInRepo(repoPath, relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return "", errors.New("absolute paths are not allowed")
	}
	resolved := filepath.Join(repoPath, filepath.FromSlash(relative))
	rel, err := filepath.Rel(repoPath, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %q escapes the repository", relative)
	}
	return resolved, nil
}

// fileReadTool reads a single file relative to the repository root.

type fileReadInput struct {
	Path string `json:"path" jsonschema:"required,description=File path relative to the repository root"`
}

type fileReadTool struct{}

func (t *fileReadTool) Name() string { return "file_read" }

func (t *fileReadTool) Description() string {
	return "Read a file from the repository. The path must be relative to the repository root."
}

func (t *fileReadTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[fileReadInput]()
}

func (t *fileReadTool) Execute(repoPath string, input json.RawMessage) (string, error) {
	var params fileReadInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", errors.Wrap(err, "invalid file_read input")
	}

	path, err := resolveInRepo(repoPath, params.Path)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", params.Path)
	}
	if len(content) > maxFileReadBytes {
		return string(content[:maxFileReadBytes]) + "\n[truncated]", nil
	}
	return string(content), nil
}

// listFilesTool lists repository files matching a doublestar glob pattern.

type listFilesInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Glob pattern relative to the repository root; supports ** for recursion"`
}

type listFilesTool struct{}

func (t *listFilesTool) Name() string { return "list_files" }

func (t *listFilesTool) Description() string {
	return "List files in the repository matching a glob pattern, e.g. '*' or 'src/**/*.py'."
}

func (t *listFilesTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[listFilesInput]()
}

func (t *listFilesTool) Execute(repoPath string, input json.RawMessage) (string, error) {
	var params listFilesInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", errors.Wrap(err, "invalid list_files input")
	}

	matches, err := doublestar.Glob(os.DirFS(repoPath), params.Pattern)
	if err != nil {
		return "", errors.Wrapf(err, "invalid glob pattern %q", params.Pattern)
	}

	truncated := false
	if len(matches) > maxListedFiles {
		matches = matches[:maxListedFiles]
		truncated = true
	}

	var result strings.Builder
	for _, match := range matches {
		result.WriteString(match)
		result.WriteString("\n")
	}
	if truncated {
		result.WriteString(fmt.Sprintf("[results truncated to %d entries]\n", maxListedFiles))
	}
	if result.Len() == 0 {
		return "no matches", nil
	}
	return result.String(), nil
}

// grepTool searches file contents with a regular expression.

type grepInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Regular expression to search for"`
	Glob    string `json:"glob,omitempty" jsonschema:"description=Optional glob restricting which files are searched; defaults to every file"`
}

type grepTool struct{}

func (t *grepTool) Name() string { return "grep" }

func (t *grepTool) Description() string {
	return "Search repository file contents with a regular expression, optionally restricted by a glob pattern."
}

func (t *grepTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[grepInput]()
}

func (t *grepTool) Execute(repoPath string, input json.RawMessage) (string, error) {
	var params grepInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", errors.Wrap(err, "invalid grep input")
	}

	pattern, err := regexp.Compile(params.Pattern)
	if err != nil {
		return "", errors.Wrapf(err, "invalid regular expression %q", params.Pattern)
	}

	fileGlob := params.Glob
	if fileGlob == "" {
		fileGlob = "**"
	}
	files, err := doublestar.Glob(os.DirFS(repoPath), fileGlob)
	if err != nil {
		return "", errors.Wrapf(err, "invalid glob pattern %q", fileGlob)
	}

	var result strings.Builder
	matchCount := 0
	for _, file := range files {
		if matchCount >= maxGrepMatches {
			break
		}
		path := filepath.Join(repoPath, filepath.FromSlash(file))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() && matchCount < maxGrepMatches {
			lineNo++
			if pattern.MatchString(scanner.Text()) {
				result.WriteString(fmt.Sprintf("%s:%d:%s\n", file, lineNo, scanner.Text()))
				matchCount++
			}
		}
		f.Close()
	}

	if matchCount == 0 {
		return "no matches", nil
	}
	if matchCount >= maxGrepMatches {
		result.WriteString(fmt.Sprintf("[results truncated to %d matches]\n", maxGrepMatches))
	}
	return result.String(), nil
}
