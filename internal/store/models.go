package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Import job lifecycle states
const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusSucceeded = "succeeded"
	ImportStatusFailed    = "failed"
)

// Application pipeline states
const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusApplied   = "applied"
	ApplicationStatusInterview = "interview"
	ApplicationStatusOffer     = "offer"
	ApplicationStatusRejected  = "rejected"
)

// Soft-skills assessment states
const (
	AssessmentStatusActive    = "active"
	AssessmentStatusCompleted = "completed"
)

// Base carries the shared columns of every entity. IDs are UUIDs generated
// on insert.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User owns every other row. Deleting a user cascades through resumes, jobs,
// applications, assessments, settings, module results and import jobs.
type User struct {
	Base
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `json:"name"`

	Resumes      []Resume               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Jobs         []Job                  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Applications []Application          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Assessments  []SoftSkillsAssessment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Settings     *UserSettings          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Results      []ModuleResult         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Imports      []ImportJob            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Resume holds both the raw text (as uploaded or imported) and the structured
// content rendered to PDF. Skills are extracted once and reused by the
// analysis modules.
type Resume struct {
	Base
	UserID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	Title   string         `gorm:"not null" json:"title"`
	RawText string         `gorm:"type:text" json:"rawText"`
	Content datatypes.JSON `json:"content"`
	Skills  datatypes.JSON `json:"skills"`
	Source  string         `gorm:"default:manual" json:"source"` // manual, upload, linkedin
}

// Job is a saved job posting the user is targeting
type Job struct {
	Base
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	CompanyName string     `json:"companyName"`
	CompanyID   *uuid.UUID `gorm:"type:uuid" json:"companyId,omitempty"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `json:"location"`
	URL         string     `json:"url"`
}

// Company caches research output so repeat lookups skip the AI call
type Company struct {
	Base
	Name         string         `gorm:"uniqueIndex;not null" json:"name"`
	Industry     string         `json:"industry"`
	Research     datatypes.JSON `json:"research"`
	ResearchedAt *time.Time     `json:"researchedAt,omitempty"`
}

// Application links a resume to a job and tracks the pipeline state
type Application struct {
	Base
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	ResumeID  uuid.UUID  `gorm:"type:uuid;not null" json:"resumeId"`
	JobID     uuid.UUID  `gorm:"type:uuid;not null" json:"jobId"`
	Status    string     `gorm:"default:draft" json:"status"`
	Notes     string     `gorm:"type:text" json:"notes"`
	AppliedAt *time.Time `json:"appliedAt,omitempty"`

	Resume Resume `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Job    Job    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// SoftSkillsAssessment is one interview session. The transcript accumulates
// across turns; scores appear when the session is finalized.
type SoftSkillsAssessment struct {
	Base
	UserID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	JobID        *uuid.UUID     `gorm:"type:uuid" json:"jobId,omitempty"`
	Status       string         `gorm:"default:active" json:"status"`
	Transcript   datatypes.JSON `json:"transcript"`
	Scores       datatypes.JSON `json:"scores"`
	Summary      string         `gorm:"type:text" json:"summary"`
	OverallScore *int           `json:"overallScore,omitempty"`
}

// UserSettings holds per-user preferences, one row per user. The style sheet
// extracted from a sample resume drives PDF generation.
type UserSettings struct {
	Base
	UserID   uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Style    datatypes.JSON `json:"style"`
	PageSize string         `gorm:"default:A4" json:"pageSize"`
}

// ModuleResult is a persisted analyzer run: which module, against which
// resume/job, the score it produced and the full payload.
type ModuleResult struct {
	Base
	UserID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	ResumeID     *uuid.UUID     `gorm:"type:uuid;index" json:"resumeId,omitempty"`
	JobID        *uuid.UUID     `gorm:"type:uuid" json:"jobId,omitempty"`
	Module       string         `gorm:"index;not null" json:"module"`
	Score        int            `json:"score"`
	Payload      datatypes.JSON `json:"payload"`
	InputTokens  int64          `json:"inputTokens"`
	OutputTokens int64          `json:"outputTokens"`
}

// ImportJob tracks one profile import from start through dataset fetch
type ImportJob struct {
	Base
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	Provider   string     `gorm:"default:linkedin" json:"provider"`
	ProfileURL string     `gorm:"not null" json:"profileUrl"`
	Status     string     `gorm:"default:pending" json:"status"`
	RunID      string     `json:"runId"`
	ResumeID   *uuid.UUID `gorm:"type:uuid" json:"resumeId,omitempty"`
	Error      string     `json:"error,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// allModels lists every entity for migration, in dependency order
func allModels() []any {
	return []any{
		&User{},
		&Resume{},
		&Job{},
		&Company{},
		&Application{},
		&SoftSkillsAssessment{},
		&UserSettings{},
		&ModuleResult{},
		&ImportJob{},
	}
}
