package services

import (
	"strings"

	"alfredoptarigan/job-matcher/internal/models"
)

const cvPreviewChars = 300

// skillKeywords is the keyword list scanned when building a CVSummary. The
// scan is a cheap heuristic; the LLM sees the full text anyway.
var skillKeywords = []string{
	"python", "java", "javascript", "typescript", "go", "react", "angular", "vue", "node.js",
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"docker", "kubernetes", "aws", "azure", "gcp", "linux", "git",
	"machine learning", "ai", "data science", "analytics", "tableau",
	"power bi", "excel", "project management", "agile", "scrum",
	"communication", "leadership", "teamwork", "problem solving",
}

// BuildCVSummary derives the ephemeral per-request CV summary. Nothing here
// is ever written to durable storage.
func BuildCVSummary(rawText, cleanedText string) models.CVSummary {
	preview := cleanedText
	if len(preview) > cvPreviewChars {
		preview = preview[:cvPreviewChars] + "..."
	}

	return models.CVSummary{
		RawText:     rawText,
		CleanedText: cleanedText,
		Preview:     preview,
		Skills:      detectSkills(cleanedText),
		WordCount:   len(strings.Fields(cleanedText)),
	}
}

func detectSkills(text string) []string {
	lower := strings.ToLower(text)

	var skills []string
	seen := make(map[string]bool)
	for _, keyword := range skillKeywords {
		if seen[keyword] {
			continue
		}
		if strings.Contains(lower, keyword) {
			skills = append(skills, titleCase(keyword))
			seen[keyword] = true
		}
	}

	return skills
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
