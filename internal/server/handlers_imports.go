package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"tailorbase/internal/errors"
	"tailorbase/internal/observability"
	"tailorbase/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

type ImportRequest struct {
	UserID     string `json:"userId"`
	ProfileURL string `json:"profileUrl"`
}

// startImportHandler creates an import job and runs the scraper pipeline in
// the background. The caller polls GET /api/imports/linkedin/{id}.
func (s *Server) startImportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.import.start")
	defer span.End()

	var req ImportRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if err := validateProfileURL(req.ProfileURL); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	job := &store.ImportJob{
		UserID:     userID,
		Provider:   "linkedin",
		ProfileURL: req.ProfileURL,
		Status:     store.ImportStatusPending,
	}
	if err := s.store.CreateImportJob(ctx, job); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(attribute.String("import.id", job.ID.String()))
	go s.runImport(job.ID, userID, req.ProfileURL)

	s.writeData(w, http.StatusAccepted, job)
}

// getImportHandler reports import status and, on success, the resume it
// produced
func (s *Server) getImportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.import.get")
	defer span.End()

	id, err := pathUUID(r)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	job, err := s.store.GetImportJob(ctx, id)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, job)
}

// runImport drives one profile import: start the actor run, wait for it,
// fetch the dataset and materialize a resume. Runs detached from the
// request; its lifetime is bounded by the scraper's max wait plus slack for
// the dataset fetch.
func (s *Server) runImport(importID, userID uuid.UUID, profileURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scraper.MaxWait+time.Minute)
	defer cancel()

	run, err := s.scraper.StartRun(ctx, profileURL)
	if err != nil {
		s.failImport(ctx, importID, err)
		return
	}

	if job, getErr := s.store.GetImportJob(ctx, importID); getErr == nil {
		job.Status = store.ImportStatusRunning
		job.RunID = run.ID
		if updateErr := s.store.UpdateImportJob(ctx, job); updateErr != nil {
			s.logger.LogError(updateErr, "Failed to record import run", "import_id", importID)
		}
	}

	finished, err := s.scraper.WaitForRun(ctx, run.ID)
	if err != nil {
		s.failImport(ctx, importID, err)
		return
	}

	items, err := s.scraper.FetchItems(ctx, finished.DefaultDatasetID)
	if err != nil {
		s.failImport(ctx, importID, err)
		return
	}
	if len(items) == 0 {
		s.failImport(ctx, importID, errors.NewIOError(errors.ErrCodeImportFailed,
			"Scraper returned no profile data", nil))
		return
	}

	profile := items[0]
	content, err := json.Marshal(profile.ToResumeContent())
	if err != nil {
		s.failImport(ctx, importID, err)
		return
	}
	skills, err := json.Marshal(profile.Skills)
	if err != nil {
		s.failImport(ctx, importID, err)
		return
	}

	title := profile.Headline
	if title == "" {
		title = "Imported profile"
	}
	resume := &store.Resume{
		UserID:  userID,
		Title:   title,
		RawText: profile.ToRawText(),
		Content: datatypes.JSON(content),
		Skills:  datatypes.JSON(skills),
		Source:  "linkedin",
	}
	if err := s.store.CreateResume(ctx, resume); err != nil {
		s.failImport(ctx, importID, err)
		return
	}

	if err := s.store.MarkImportFinished(ctx, importID, store.ImportStatusSucceeded, &resume.ID, ""); err != nil {
		s.logger.LogError(err, "Failed to finish import", "import_id", importID)
		return
	}

	s.recordMetric(ctx, observability.MetricImportCompleted, true)
	s.logger.Info("Profile import completed",
		"import_id", importID,
		"resume_id", resume.ID)
}

// importStatusWriteTimeout bounds the terminal status update in failImport
const importStatusWriteTimeout = 10 * time.Second

// statusWriteContext detaches from the run context's deadline while keeping
// its values. The run context is often already expired when failImport runs
// (the wait budget is a failure cause), and the status write must not be
// lost to that same deadline or the row stays "running" forever.
func statusWriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), importStatusWriteTimeout)
}

// failImport records the terminal failure state
func (s *Server) failImport(ctx context.Context, importID uuid.UUID, cause error) {
	s.logger.LogError(cause, "Profile import failed", "import_id", importID)

	ctx, cancel := statusWriteContext(ctx)
	defer cancel()
	if err := s.store.MarkImportFinished(ctx, importID, store.ImportStatusFailed, nil, cause.Error()); err != nil {
		s.logger.LogError(err, "Failed to record import failure", "import_id", importID)
	}
	s.recordMetric(ctx, observability.MetricImportCompleted, false)
}

// validateProfileURL accepts absolute http(s) profile URLs only
func validateProfileURL(raw string) error {
	if err := requireField("profileUrl", raw); err != nil {
		return err
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"profileUrl must be an absolute http(s) URL", err)
	}
	return nil
}
