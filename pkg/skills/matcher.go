package skills

import (
	"github.com/devpack-ai/devpack/pkg/types/stack"
)

// MatchSkills returns the subset of skills relevant to the detected stack,
// preserving the input order. The rules are evaluated per skill in order,
// short-circuiting on the first that holds:
//
//  1. An empty stack matches every skill (show everything rather than nothing).
//  2. The reserved tag "general" always matches.
//  3. The reserved tag "frontend" matches when the stack contains at least
//     one client-side technology.
//  4. A non-empty intersection between the skill's tags and the detected
//     technology ids matches.
//
// The result is a pure function of its inputs.
func MatchSkills(skills []Skill, detected []stack.DetectedTechnology) []Skill {
	if len(detected) == 0 {
		return skills
	}

	stackIDs := make(map[string]struct{}, len(detected))
	for _, id := range stack.IDs(detected) {
		stackIDs[id] = struct{}{}
	}
	hasFrontend := stack.HasFrontend(detected)

	var matched []Skill
	for _, skill := range skills {
		if isRelevant(skill, stackIDs, hasFrontend) {
			matched = append(matched, skill)
		}
	}
	return matched
}

func isRelevant(skill Skill, stackIDs map[string]struct{}, hasFrontend bool) bool {
	if skill.HasTag(TagGeneral) {
		return true
	}
	if hasFrontend && skill.HasTag(TagFrontend) {
		return true
	}
	for _, tag := range skill.Tags {
		if _, ok := stackIDs[tag]; ok {
			return true
		}
	}
	return false
}
