package registry

// KnownTechnologyIDs is the closed vocabulary of technology identifiers the
// agent-backed detector is allowed to report. Identifiers outside this list
// are a contract violation and are filtered out during validation.
var KnownTechnologyIDs = []string{
	// Languages
	"python", "javascript", "typescript", "ruby", "go", "rust",
	// Python frameworks
	"django", "fastapi", "flask",
	// JS frameworks
	"react", "vue", "nextjs", "vite", "angular",
	// Ruby
	"rails",
	// Databases
	"postgres", "mysql", "sqlite", "redis", "mongodb",
	// Infrastructure
	"docker", "kubernetes",
	// Other common
	"celery", "graphql",
}

// FrontendTechnologyIDs is the allow-list of identifiers that may carry the
// frontend flag. The agent-backed detector clears the flag on anything else.
var FrontendTechnologyIDs = []string{
	"javascript", "typescript", "react", "vue", "nextjs", "vite", "angular",
}

// KnownID reports whether id belongs to the permitted vocabulary.
func KnownID(id string) bool {
	for _, known := range KnownTechnologyIDs {
		if id == known {
			return true
		}
	}
	return false
}

// FrontendID reports whether id is allowed to carry the frontend flag.
func FrontendID(id string) bool {
	for _, frontend := range FrontendTechnologyIDs {
		if id == frontend {
			return true
		}
	}
	return false
}
