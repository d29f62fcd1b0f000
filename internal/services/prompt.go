package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/job-matcher/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRescorePrompt creates a single prompt that rescores every candidate
// against the CV. One call covers the whole candidate set to bound LLM cost.
func (pb *PromptBuilder) BuildRescorePrompt(cvText string, candidates []models.MatchResult) string {
	var jobs strings.Builder
	for i, c := range candidates {
		jobs.WriteString(fmt.Sprintf(`Job %d:
- id: %s
- title: %s
- company: %s
- required_skills: %s
- experience_level: %s
- education_requirements: %s
- description: %s
- vector_similarity: %.1f

`, i+1, c.Job.ID, c.Job.Title, c.Job.Company, c.Job.RequiredSkills,
			c.Job.ExperienceLevel, c.Job.EducationRequirements,
			truncate(c.Job.Description, 500), c.SimilarityScore))
	}

	return fmt.Sprintf(`You are an expert recruiter assessing how well a candidate fits a set of job postings.

CANDIDATE CV:
%s

CANDIDATE JOBS:
%s
The vector_similarity values come from embedding search over short job texts and miss qualification nuances. Produce a corrected match score (0-100) for every job, judging skills overlap, experience level fit and education requirements against the CV.

Return ONLY a JSON array, one object per job, in this exact format:
[
  {"id": "<job id>", "score": <0-100>, "reason": "<one sentence justification>"}
]

Include every job exactly once. No markdown, no commentary.`, truncate(cvText, 8000), jobs.String())
}

// BuildAnalysisPrompt creates the prompt for the free-text match analysis.
func (pb *PromptBuilder) BuildAnalysisPrompt(cvText string, matches []models.MatchResult) string {
	var ranked strings.Builder
	for i, m := range matches {
		line := fmt.Sprintf("%d. %s at %s (score %.1f", i+1, m.Job.Title, m.Job.Company, m.EffectiveScore())
		if m.RescoreReason != "" {
			line += fmt.Sprintf("; %s", m.RescoreReason)
		}
		line += ")\n"
		ranked.WriteString(line)
	}

	return fmt.Sprintf(`You are an AI career advisor helping a job seeker understand their match results.

CANDIDATE CV:
%s

RANKED JOB MATCHES:
%s
Write a concise analysis (4-8 sentences) that:
1. Summarizes the candidate's profile
2. Explains why the top matches fit
3. Points out notable gaps the candidate could close
Return plain text only, professional and encouraging in tone.`, truncate(cvText, 8000), ranked.String())
}

// BuildChatPrompt flattens the advisor conversation into a single prompt.
func (pb *PromptBuilder) BuildChatPrompt(message string, history []models.ChatTurn, matchContext string) string {
	var b strings.Builder

	b.WriteString(`You are an AI career advisor. You help job seekers with career advice, CV feedback and job matching guidance. Be helpful, professional and actionable.

`)

	if matchContext != "" {
		b.WriteString("CURRENT JOB MATCH CONTEXT:\n")
		b.WriteString(matchContext)
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, turn := range history {
			b.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("user: %s\n\nReply as the advisor, plain text only.", message))

	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// ExtractJSON pulls a JSON object or array out of text that may wrap it in
// markdown fences or prose.
func ExtractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// An array wins when it opens before the first object, which is the
	// shape the rescore prompt asks for.
	if startArr != -1 && endArr != -1 && endArr > startArr && (startObj == -1 || startArr < startObj) {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
