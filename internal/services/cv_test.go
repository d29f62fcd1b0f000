package services

import (
	"strings"
	"testing"
)

func TestBuildCVSummarySkillDetection(t *testing.T) {
	text := "Experienced engineer with Python, Docker and Kubernetes. Led Agile teams on AWS."

	summary := BuildCVSummary(text, text)

	want := map[string]bool{
		"Python":     true,
		"Docker":     true,
		"Kubernetes": true,
		"Agile":      true,
		"Aws":        true,
	}
	for _, skill := range summary.Skills {
		delete(want, skill)
	}
	if len(want) > 0 {
		t.Errorf("skills not detected: %v (got %v)", want, summary.Skills)
	}
}

func TestBuildCVSummaryWordCount(t *testing.T) {
	summary := BuildCVSummary("raw", "one two three four")
	if summary.WordCount != 4 {
		t.Errorf("expected word count 4, got %d", summary.WordCount)
	}
}

func TestBuildCVSummaryPreviewTruncated(t *testing.T) {
	long := strings.Repeat("x", 1000)

	summary := BuildCVSummary(long, long)

	if len(summary.Preview) > cvPreviewChars+3 {
		t.Errorf("preview too long: %d chars", len(summary.Preview))
	}
	if !strings.HasSuffix(summary.Preview, "...") {
		t.Error("truncated preview should end with ellipsis")
	}
}

func TestBuildCVSummaryShortPreviewUntouched(t *testing.T) {
	summary := BuildCVSummary("short cv", "short cv")
	if summary.Preview != "short cv" {
		t.Errorf("short preview should pass through, got %q", summary.Preview)
	}
}

func TestDetectSkillsNoDuplicates(t *testing.T) {
	skills := detectSkills("python python PYTHON")
	if len(skills) != 1 {
		t.Errorf("expected one skill, got %v", skills)
	}
}

func TestDetectSkillsMultiWord(t *testing.T) {
	skills := detectSkills("strong machine learning and project management background")

	found := map[string]bool{}
	for _, s := range skills {
		found[s] = true
	}
	if !found["Machine Learning"] {
		t.Errorf("multi-word skill not detected: %v", skills)
	}
	if !found["Project Management"] {
		t.Errorf("multi-word skill not detected: %v", skills)
	}
}
