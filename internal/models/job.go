package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobPosting is the catalog record for one job. Postgres is the catalog of
// record; the embedding vector lives in Qdrant under the same id.
type JobPosting struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                 string    `gorm:"type:text;not null" json:"title"`
	Company               string    `gorm:"type:text" json:"company"`
	Description           string    `gorm:"type:text;not null" json:"description"`
	RequiredSkills        string    `gorm:"type:text" json:"required_skills"`
	Location              string    `gorm:"type:text" json:"location"`
	SalaryRange           string    `gorm:"type:text" json:"salary_range"`
	ExperienceLevel       string    `gorm:"type:text" json:"experience_level"`
	EducationRequirements string    `gorm:"type:text" json:"education_requirements"`
	CreatedAt             time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt             time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// EmbedText returns the text whose embedding represents this posting:
// title, description and skills concatenated.
func (j *JobPosting) EmbedText() string {
	parts := []string{j.Title, j.Description, j.RequiredSkills}
	var nonEmpty []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// Validate reports whether the posting carries the minimum required fields.
func (j *JobPosting) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrMissingField("title")
	}
	if strings.TrimSpace(j.Description) == "" {
		return ErrMissingField("description")
	}
	return nil
}

// MatchResult is one ranked job match returned to the client. RescoredScore
// is nil when the LLM rescoring step was skipped or fell back.
type MatchResult struct {
	Job             JobPosting `json:"job"`
	SimilarityScore float64    `json:"similarity_score"`
	RescoredScore   *float64   `json:"rescored_score,omitempty"`
	RescoreReason   string     `json:"rescore_reason,omitempty"`
}

// EffectiveScore is the ordering key: the rescored score when present,
// otherwise the raw vector similarity.
func (m *MatchResult) EffectiveScore() float64 {
	if m.RescoredScore != nil {
		return *m.RescoredScore
	}
	return m.SimilarityScore
}

// CVSummary is derived per request and never persisted.
type CVSummary struct {
	RawText     string   `json:"-"`
	CleanedText string   `json:"-"`
	Preview     string   `json:"preview"`
	Skills      []string `json:"skills"`
	WordCount   int      `json:"word_count"`
}

// ChatTurn is one message of a client-owned conversation. The server keeps
// no chat state; the full history is resent on every call.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
