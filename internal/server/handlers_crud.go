package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tailorbase/internal/errors"
	"tailorbase/internal/store"
	"tailorbase/internal/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// --- Users ---

type UserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		s.writeError(w, err)
		return
	}

	user := &store.User{Email: strings.ToLower(strings.TrimSpace(req.Email)), Name: req.Name}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, user)
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, users)
}

func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, user)
}

func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req UserRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Email != "" {
		if err := validateEmail(req.Email); err != nil {
			s.writeError(w, err)
			return
		}
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, user)
}

func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Resumes ---

type ResumeRequest struct {
	UserID  string               `json:"userId"`
	Title   string               `json:"title"`
	RawText string               `json:"rawText"`
	Content *types.ResumeContent `json:"content,omitempty"`
	Skills  []string             `json:"skills,omitempty"`
}

func (s *Server) createResumeHandler(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := requireField("title", req.Title); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.boundField("rawText", req.RawText); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return
	}

	resume := &store.Resume{
		UserID:  userID,
		Title:   req.Title,
		RawText: req.RawText,
		Source:  "manual",
	}
	if err := applyResumePayload(resume, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.CreateResume(r.Context(), resume); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, resume)
}

func (s *Server) listResumesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumes, err := s.store.ListResumes(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, resumes)
}

func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resume, err := s.store.GetResume(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, resume)
}

func (s *Server) updateResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ResumeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.boundField("rawText", req.RawText); err != nil {
		s.writeError(w, err)
		return
	}

	resume, err := s.store.GetResume(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Title != "" {
		resume.Title = req.Title
	}
	if req.RawText != "" {
		resume.RawText = req.RawText
	}
	if err := applyResumePayload(resume, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.UpdateResume(r.Context(), resume); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, resume)
}

func (s *Server) deleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteResume(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Jobs ---

type JobRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	Location    string `json:"location"`
	URL         string `json:"url"`
}

func (s *Server) createJobHandler(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := requireField("title", req.Title); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.boundField("description", req.Description); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return
	}

	job := &store.Job{
		UserID:      userID,
		Title:       req.Title,
		CompanyName: req.CompanyName,
		Description: req.Description,
		Location:    req.Location,
		URL:         req.URL,
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, job)
}

func (s *Server) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jobs, err := s.store.ListJobs(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, jobs)
}

func (s *Server) getJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, job)
}

func (s *Server) updateJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req JobRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.boundField("description", req.Description); err != nil {
		s.writeError(w, err)
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Title != "" {
		job.Title = req.Title
	}
	if req.CompanyName != "" && req.CompanyName != job.CompanyName {
		job.CompanyName = req.CompanyName
		// Cached research belongs to the old company
		job.CompanyID = nil
	}
	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Location != "" {
		job.Location = req.Location
	}
	if req.URL != "" {
		job.URL = req.URL
	}
	if err := s.store.UpdateJob(r.Context(), job); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, job)
}

func (s *Server) deleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteJob(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Companies (research cache, read-mostly) ---

func (s *Server) listCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, companies)
}

func (s *Server) getCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	company, err := s.store.GetCompany(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, company)
}

func (s *Server) deleteCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Applications ---

type ApplicationRequest struct {
	UserID   string `json:"userId"`
	ResumeID string `json:"resumeId"`
	JobID    string `json:"jobId"`
	Status   string `json:"status,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (s *Server) createApplicationHandler(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resumeID, err := parseUUID("resumeId", req.ResumeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	jobID, err := parseUUID("jobId", req.JobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := req.Status
	if status == "" {
		status = store.ApplicationStatusDraft
	}
	if err := validateApplicationStatus(status); err != nil {
		s.writeError(w, err)
		return
	}
	// Both sides must exist and belong to the user
	if _, err := s.store.GetResume(r.Context(), resumeID); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.loadUserJob(r.Context(), userID, req.JobID); err != nil {
		s.writeError(w, err)
		return
	}

	app := &store.Application{
		UserID:   userID,
		ResumeID: resumeID,
		JobID:    jobID,
		Status:   status,
		Notes:    req.Notes,
	}
	if status == store.ApplicationStatusApplied {
		now := time.Now()
		app.AppliedAt = &now
	}
	if err := s.store.CreateApplication(r.Context(), app); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, app)
}

func (s *Server) listApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	apps, err := s.store.ListApplications(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, apps)
}

func (s *Server) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	app, err := s.store.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, app)
}

func (s *Server) updateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ApplicationRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	app, err := s.store.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Status != "" {
		if err := validateApplicationStatus(req.Status); err != nil {
			s.writeError(w, err)
			return
		}
		if req.Status == store.ApplicationStatusApplied && app.AppliedAt == nil {
			now := time.Now()
			app.AppliedAt = &now
		}
		app.Status = req.Status
	}
	if req.Notes != "" {
		app.Notes = req.Notes
	}
	if err := s.store.UpdateApplication(r.Context(), app); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, app)
}

func (s *Server) deleteApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteApplication(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Settings ---

type SettingsRequest struct {
	PageSize string            `json:"pageSize,omitempty"`
	Style    *types.StyleSheet `json:"style,omitempty"`
}

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUID("userId", r.PathValue("userId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	settings, err := s.store.GetSettings(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, settings)
}

func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUID("userId", r.PathValue("userId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req SettingsRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.PageSize != "" && req.PageSize != "A4" && req.PageSize != "Letter" {
		s.writeError(w, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"pageSize must be A4 or Letter", nil))
		return
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return
	}

	settings := &store.UserSettings{UserID: userID}
	if existing, getErr := s.store.GetSettings(r.Context(), userID); getErr == nil {
		settings.PageSize = existing.PageSize
		settings.Style = existing.Style
	}
	if req.PageSize != "" {
		settings.PageSize = req.PageSize
	}
	if req.Style != nil {
		raw, err := json.Marshal(req.Style)
		if err != nil {
			s.writeError(w, errors.NewInternalError(errors.ErrCodeInvalidFormat,
				"Failed to encode style sheet", err))
			return
		}
		settings.Style = datatypes.JSON(raw)
	}
	if err := s.store.UpsertSettings(r.Context(), settings); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, settings)
}

// --- helpers ---

// queryUserID validates the required userId list filter
func queryUserID(r *http.Request) (uuid.UUID, error) {
	return parseUUID("userId", r.URL.Query().Get("userId"))
}

// applyResumePayload encodes the optional structured fields onto the row
func applyResumePayload(resume *store.Resume, req *ResumeRequest) error {
	if req.Content != nil {
		raw, err := json.Marshal(req.Content)
		if err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				"content could not be encoded", err)
		}
		resume.Content = datatypes.JSON(raw)
	}
	if req.Skills != nil {
		raw, err := json.Marshal(req.Skills)
		if err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				"skills could not be encoded", err)
		}
		resume.Skills = datatypes.JSON(raw)
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") || strings.Contains(email, " ") {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"email must be a valid address", nil)
	}
	return nil
}

func validateApplicationStatus(status string) error {
	switch status {
	case store.ApplicationStatusDraft, store.ApplicationStatusApplied,
		store.ApplicationStatusInterview, store.ApplicationStatusOffer,
		store.ApplicationStatusRejected:
		return nil
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"status must be one of draft, applied, interview, offer, rejected", nil)
	}
}
