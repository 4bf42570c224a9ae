// Package registry holds the static catalog of detectable technologies.
// Each technology carries a list of indicators, declarative predicates over
// a repository's file tree. A technology is considered present when any one
// of its indicators holds. The catalog is initialized at process start and
// never mutated.
package registry

import "github.com/devpack-ai/devpack/pkg/types/stack"

// IndicatorKind identifies how an indicator inspects the repository.
type IndicatorKind int

const (
	// FileExists holds when File is present in the repository root.
	FileExists IndicatorKind = iota
	// FileContains holds when File exists and its lower-cased content
	// contains Needle.
	FileContains
	// PackageJSONDep holds when package.json declares Needle under
	// dependencies or devDependencies.
	PackageJSONDep
	// PyprojectDep holds when pyproject.toml declares a dependency whose
	// lower-cased spec contains Needle (PEP 621 or poetry style).
	PyprojectDep
)

// Indicator is a single piece of detection evidence. Indicators are pure:
// read-only filesystem access only, and any read or parse failure is
// treated as the signal being absent.
type Indicator struct {
	Kind   IndicatorKind
	File   string
	Needle string
}

// Technology is one catalog entry.
type Technology struct {
	ID         string
	Name       string
	Frontend   bool
	Indicators []Indicator
}

// Detected converts a catalog entry into the detection value type.
func (t Technology) Detected() stack.DetectedTechnology {
	return stack.DetectedTechnology{ID: t.ID, Name: t.Name, Frontend: t.Frontend}
}

func exists(file string) Indicator {
	return Indicator{Kind: FileExists, File: file}
}

func contains(file, needle string) Indicator {
	return Indicator{Kind: FileContains, File: file, Needle: needle}
}

func npmDep(needle string) Indicator {
	return Indicator{Kind: PackageJSONDep, Needle: needle}
}

func pyDep(needle string) Indicator {
	return Indicator{Kind: PyprojectDep, Needle: needle}
}

// Technologies is the ordered technology catalog. Evaluation order must not
// affect the detection result; the order here only fixes the order of the
// detector's output.
var Technologies = []Technology{
	{
		ID:   "python",
		Name: "Python",
		Indicators: []Indicator{
			exists("pyproject.toml"),
			exists("requirements.txt"),
			exists("setup.py"),
			exists("setup.cfg"),
			exists("Pipfile"),
		},
	},
	{
		ID:   "django",
		Name: "Django",
		Indicators: []Indicator{
			contains("requirements.txt", "django"),
			pyDep("django"),
			exists("manage.py"),
		},
	},
	{
		ID:   "fastapi",
		Name: "FastAPI",
		Indicators: []Indicator{
			contains("requirements.txt", "fastapi"),
			pyDep("fastapi"),
		},
	},
	{
		ID:   "flask",
		Name: "Flask",
		Indicators: []Indicator{
			contains("requirements.txt", "flask"),
			pyDep("flask"),
		},
	},
	{
		ID:       "javascript",
		Name:     "JavaScript",
		Frontend: true,
		Indicators: []Indicator{
			exists("package.json"),
		},
	},
	{
		ID:       "typescript",
		Name:     "TypeScript",
		Frontend: true,
		Indicators: []Indicator{
			exists("tsconfig.json"),
			npmDep("typescript"),
		},
	},
	{
		ID:       "react",
		Name:     "React",
		Frontend: true,
		Indicators: []Indicator{
			npmDep("react"),
		},
	},
	{
		ID:       "vue",
		Name:     "Vue",
		Frontend: true,
		Indicators: []Indicator{
			npmDep("vue"),
		},
	},
	{
		ID:       "nextjs",
		Name:     "Next.js",
		Frontend: true,
		Indicators: []Indicator{
			npmDep("next"),
		},
	},
	{
		ID:   "ruby",
		Name: "Ruby",
		Indicators: []Indicator{
			exists("Gemfile"),
		},
	},
	{
		ID:   "rails",
		Name: "Ruby on Rails",
		Indicators: []Indicator{
			contains("Gemfile", "rails"),
		},
	},
	{
		ID:   "go",
		Name: "Go",
		Indicators: []Indicator{
			exists("go.mod"),
		},
	},
	{
		ID:   "rust",
		Name: "Rust",
		Indicators: []Indicator{
			exists("Cargo.toml"),
		},
	},
	{
		ID:   "postgres",
		Name: "PostgreSQL",
		Indicators: []Indicator{
			contains("requirements.txt", "psycopg"),
			pyDep("psycopg"),
			contains("docker-compose.yml", "postgres"),
			contains("docker-compose.yaml", "postgres"),
		},
	},
	{
		ID:   "docker",
		Name: "Docker",
		Indicators: []Indicator{
			exists("Dockerfile"),
			exists("docker-compose.yml"),
			exists("docker-compose.yaml"),
		},
	},
}
