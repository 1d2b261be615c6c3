package store

import (
	"context"
	stderrors "errors"
	"time"

	"tailorbase/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListLimit = 100

// Store wraps the database with entity-level operations. Not-found rows and
// unique violations are translated to AppErrors so handlers can map them
// straight to HTTP statuses.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, entity+" not found", err)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.NewConflictError(errors.ErrCodeDuplicate, entity+" already exists", err)
	}
	return errors.NewStorageError(errors.ErrCodeStorageFailed, "Database operation failed for "+entity, err)
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return translateError(s.db.WithContext(ctx).Create(user).Error, "user")
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(defaultListLimit).Find(&users).Error
	return users, translateError(err, "user")
}

func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	return translateError(s.db.WithContext(ctx).Save(user).Error, "user")
}

// DeleteUser removes the user and, through the schema's cascade rules, every
// row the user owns.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, "user not found", nil)
	}
	return nil
}

// --- Resumes ---

func (s *Store) CreateResume(ctx context.Context, resume *Resume) error {
	return translateError(s.db.WithContext(ctx).Create(resume).Error, "resume")
}

func (s *Store) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	var resume Resume
	err := s.db.WithContext(ctx).First(&resume, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "resume")
	}
	return &resume, nil
}

func (s *Store) ListResumes(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	var resumes []Resume
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("updated_at desc").Limit(defaultListLimit).Find(&resumes).Error
	return resumes, translateError(err, "resume")
}

func (s *Store) UpdateResume(ctx context.Context, resume *Resume) error {
	return translateError(s.db.WithContext(ctx).Save(resume).Error, "resume")
}

func (s *Store) DeleteResume(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Resume{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "resume")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, "resume not found", nil)
	}
	return nil
}

// --- Jobs ---

func (s *Store) CreateJob(ctx context.Context, job *Job) error {
	return translateError(s.db.WithContext(ctx).Create(job).Error, "job")
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "job")
	}
	return &job, nil
}

func (s *Store) ListJobs(ctx context.Context, userID uuid.UUID) ([]Job, error) {
	var jobs []Job
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(defaultListLimit).Find(&jobs).Error
	return jobs, translateError(err, "job")
}

func (s *Store) UpdateJob(ctx context.Context, job *Job) error {
	return translateError(s.db.WithContext(ctx).Save(job).Error, "job")
}

func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Job{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "job")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, "job not found", nil)
	}
	return nil
}

// --- Companies ---

func (s *Store) CreateCompany(ctx context.Context, company *Company) error {
	return translateError(s.db.WithContext(ctx).Create(company).Error, "company")
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "company")
	}
	return &company, nil
}

// GetCompanyByName is the research cache lookup; returns a not-found
// AppError on a cache miss.
func (s *Store) GetCompanyByName(ctx context.Context, name string) (*Company, error) {
	var company Company
	err := s.db.WithContext(ctx).First(&company, "lower(name) = lower(?)", name).Error
	if err != nil {
		return nil, translateError(err, "company")
	}
	return &company, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	var companies []Company
	err := s.db.WithContext(ctx).Order("name asc").Limit(defaultListLimit).Find(&companies).Error
	return companies, translateError(err, "company")
}

func (s *Store) UpdateCompany(ctx context.Context, company *Company) error {
	return translateError(s.db.WithContext(ctx).Save(company).Error, "company")
}

func (s *Store) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Company{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "company")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, "company not found", nil)
	}
	return nil
}

// --- Applications ---

func (s *Store) CreateApplication(ctx context.Context, app *Application) error {
	return translateError(s.db.WithContext(ctx).Create(app).Error, "application")
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "application")
	}
	return &app, nil
}

func (s *Store) ListApplications(ctx context.Context, userID uuid.UUID) ([]Application, error) {
	var apps []Application
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("updated_at desc").Limit(defaultListLimit).Find(&apps).Error
	return apps, translateError(err, "application")
}

func (s *Store) UpdateApplication(ctx context.Context, app *Application) error {
	return translateError(s.db.WithContext(ctx).Save(app).Error, "application")
}

func (s *Store) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Application{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "application")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(errors.ErrCodeNotFound, "application not found", nil)
	}
	return nil
}

// --- Soft-skills assessments ---

func (s *Store) CreateAssessment(ctx context.Context, assessment *SoftSkillsAssessment) error {
	return translateError(s.db.WithContext(ctx).Create(assessment).Error, "assessment")
}

func (s *Store) GetAssessment(ctx context.Context, id uuid.UUID) (*SoftSkillsAssessment, error) {
	var assessment SoftSkillsAssessment
	err := s.db.WithContext(ctx).First(&assessment, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "assessment")
	}
	return &assessment, nil
}

func (s *Store) UpdateAssessment(ctx context.Context, assessment *SoftSkillsAssessment) error {
	return translateError(s.db.WithContext(ctx).Save(assessment).Error, "assessment")
}

// LatestCompletedAssessment returns the user's most recent finalized session,
// used by the readiness scorer.
func (s *Store) LatestCompletedAssessment(ctx context.Context, userID uuid.UUID) (*SoftSkillsAssessment, error) {
	var assessment SoftSkillsAssessment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, AssessmentStatusCompleted).
		Order("updated_at desc").First(&assessment).Error
	if err != nil {
		return nil, translateError(err, "assessment")
	}
	return &assessment, nil
}

// --- User settings ---

// UpsertSettings creates or replaces the single settings row for a user
func (s *Store) UpsertSettings(ctx context.Context, settings *UserSettings) error {
	var existing UserSettings
	err := s.db.WithContext(ctx).First(&existing, "user_id = ?", settings.UserID).Error
	switch {
	case err == nil:
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		return translateError(s.db.WithContext(ctx).Save(settings).Error, "settings")
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return translateError(s.db.WithContext(ctx).Create(settings).Error, "settings")
	default:
		return translateError(err, "settings")
	}
}

func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*UserSettings, error) {
	var settings UserSettings
	err := s.db.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if err != nil {
		return nil, translateError(err, "settings")
	}
	return &settings, nil
}

// --- Module results ---

func (s *Store) CreateModuleResult(ctx context.Context, result *ModuleResult) error {
	return translateError(s.db.WithContext(ctx).Create(result).Error, "module result")
}

// LatestModuleResult returns the most recent run of a module for a resume
func (s *Store) LatestModuleResult(ctx context.Context, userID uuid.UUID, resumeID uuid.UUID, module string) (*ModuleResult, error) {
	var result ModuleResult
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND resume_id = ? AND module = ?", userID, resumeID, module).
		Order("created_at desc").First(&result).Error
	if err != nil {
		return nil, translateError(err, "module result")
	}
	return &result, nil
}

func (s *Store) ListModuleResults(ctx context.Context, userID uuid.UUID, resumeID uuid.UUID) ([]ModuleResult, error) {
	var results []ModuleResult
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND resume_id = ?", userID, resumeID).
		Order("created_at desc").Limit(defaultListLimit).Find(&results).Error
	return results, translateError(err, "module result")
}

// --- Import jobs ---

func (s *Store) CreateImportJob(ctx context.Context, job *ImportJob) error {
	return translateError(s.db.WithContext(ctx).Create(job).Error, "import")
}

func (s *Store) GetImportJob(ctx context.Context, id uuid.UUID) (*ImportJob, error) {
	var job ImportJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "import")
	}
	return &job, nil
}

func (s *Store) UpdateImportJob(ctx context.Context, job *ImportJob) error {
	return translateError(s.db.WithContext(ctx).Save(job).Error, "import")
}

// MarkImportFinished records the terminal state of an import run
func (s *Store) MarkImportFinished(ctx context.Context, id uuid.UUID, status string, resumeID *uuid.UUID, importErr string) error {
	now := time.Now()
	updates := map[string]any{
		"status":      status,
		"finished_at": &now,
		"error":       importErr,
	}
	if resumeID != nil {
		updates["resume_id"] = resumeID
	}
	return translateError(s.db.WithContext(ctx).Model(&ImportJob{}).
		Where("id = ?", id).Updates(updates).Error, "import")
}
