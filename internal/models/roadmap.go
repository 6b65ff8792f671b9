package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// SupportedLanguages is the fixed set of languages a roadmap exists for.
// All-languages steps fan out across exactly this set.
var SupportedLanguages = []string{"python", "javascript", "java", "cpp", "go", "rust"}

// IsSupportedLanguage reports whether a roadmap exists for the language
func IsSupportedLanguage(language string) bool {
	for _, l := range SupportedLanguages {
		if l == language {
			return true
		}
	}
	return false
}

// RoadmapStep is a unit of learning content inside a roadmap document.
// Steps replicated across all languages share a GroupID; it is the only
// link between the copies, each copy is an independent row in its document.
type RoadmapStep struct {
	ID                  string    `json:"id"`
	GroupID             string    `json:"groupId"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Resources           []string  `json:"resources,omitempty"`
	DurationWeeks       int       `json:"durationWeeks,omitempty"`
	Order               int       `json:"order"`
	LanguageSpecific    bool      `json:"languageSpecific"`
	ApplyToAllLanguages bool      `json:"applyToAllLanguages"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Roadmap is the learning roadmap document for one (year, language) pair,
// holding an embedded ordered list of steps.
type Roadmap struct {
	ID        string        `json:"id"`
	Year      int           `json:"year"`
	Language  string        `json:"language"`
	Steps     []RoadmapStep `json:"steps"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// StepByID returns the index of the step with the given id, or -1
func (r *Roadmap) StepByID(stepID string) int {
	for i := range r.Steps {
		if r.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// StepByGroupID returns the index of the step with the given group id, or -1
func (r *Roadmap) StepByGroupID(groupID string) int {
	for i := range r.Steps {
		if r.Steps[i].GroupID == groupID {
			return i
		}
	}
	return -1
}

// CreateStepRequest is the admin payload for adding a roadmap step
type CreateStepRequest struct {
	Year                int      `json:"year" binding:"required,min=1,max=4"`
	Language            string   `json:"language" binding:"required,oneof=python javascript java cpp go rust"`
	Title               string   `json:"title" binding:"required,min=3,max=300"`
	Description         string   `json:"description" binding:"max=5000"`
	Resources           []string `json:"resources" binding:"max=20,dive,url"`
	DurationWeeks       int      `json:"durationWeeks" binding:"min=0,max=52"`
	ApplyToAllLanguages bool     `json:"applyToAllLanguages"`
}

// UpdateStepRequest is the admin payload for editing a roadmap step.
// Year and Language identify the document the step currently lives in.
type UpdateStepRequest struct {
	Year                int      `json:"year" binding:"required,min=1,max=4"`
	Language            string   `json:"language" binding:"required,oneof=python javascript java cpp go rust"`
	Title               string   `json:"title" binding:"required,min=3,max=300"`
	Description         string   `json:"description" binding:"max=5000"`
	Resources           []string `json:"resources" binding:"max=20,dive,url"`
	DurationWeeks       int      `json:"durationWeeks" binding:"min=0,max=52"`
	ApplyToAllLanguages bool     `json:"applyToAllLanguages"`
}

// StepWriteResult reports the outcome of a fan-out aware step write.
// AppliedCount is the number of language roadmaps actually updated;
// Failed lists languages whose document write failed (partial failure).
type StepWriteResult struct {
	StepID       string   `json:"stepId"`
	GroupID      string   `json:"groupId,omitempty"`
	AppliedCount int      `json:"appliedCount"`
	Failed       []string `json:"failed,omitempty"`
}

// ScanRoadmap scans a single PostgreSQL row into a Roadmap struct
// Expected columns: id, year, language, steps, created_at, updated_at
func ScanRoadmap(row pgx.Row) (*Roadmap, error) {
	var r Roadmap

	err := row.Scan(
		&r.ID,
		&r.Year,
		&r.Language,
		&r.Steps,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.Steps == nil {
		r.Steps = []RoadmapStep{}
	}

	return &r, nil
}
