package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/observability"
	"tailorbase/internal/pdf"
	"tailorbase/internal/store"
	"tailorbase/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// renderResumeHandler renders stored resume content to PDF using the owner's
// extracted style sheet. The response body is the document itself, not the
// JSON envelope.
func (s *Server) renderResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.resume.pdf")
	defer span.End()

	id, err := pathUUID(r)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	resume, err := s.store.GetResume(ctx, id)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if len(resume.Content) == 0 {
		err := errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume has no structured content to render", nil)
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	var content types.ResumeContent
	if err := json.Unmarshal(resume.Content, &content); err != nil {
		span.RecordError(err)
		s.writeError(w, errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Stored resume content is unreadable", err))
		return
	}

	style, pageSize := s.styleForUser(ctx, resume.UserID)

	document, err := pdf.Render(content, style, pageSize)
	if err != nil {
		span.RecordError(err)
		s.recordMetric(ctx, observability.MetricPDFGenerated, false)
		s.writeError(w, err)
		return
	}

	s.recordMetric(ctx, observability.MetricPDFGenerated, true,
		attribute.Int("pdf.bytes", len(document)))
	span.SetAttributes(attribute.Int("pdf.bytes", len(document)))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", resume.Title+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(document); err != nil {
		s.logger.LogError(err, "Failed to write PDF response", "resume_id", resume.ID)
	}
}

// parseResumeHandler accepts a multipart PDF upload, extracts its text and
// creates a resume row from it. Form fields: userId, title, file.
func (s *Server) parseResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.resume.parse")
	defer span.End()

	userID, data, err := s.readUpload(r)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	text, err := pdf.ExtractText(data, s.cfg.PDF.MaxPages)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if err := s.boundField("resume text", text); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = "Uploaded resume"
	}

	resume := &store.Resume{
		UserID:  userID,
		Title:   title,
		RawText: text,
		Source:  "upload",
	}
	if err := s.store.CreateResume(ctx, resume); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(
		attribute.String("resume.id", resume.ID.String()),
		attribute.Int("resume.text_length", len(text)),
	)
	s.writeData(w, http.StatusCreated, resume)
}

// templateHandler extracts a style sheet from an uploaded page image of a
// sample resume and stores it in the user's settings. Form fields: userId,
// file (PNG or JPEG).
func (s *Server) templateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.settings.template")
	defer span.End()

	userID, data, err := s.readUpload(r)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	mimeType := pdf.PageImageMIME(data)
	if mimeType != "image/png" && mimeType != "image/jpeg" {
		err := errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Template sample must be a PNG or JPEG page image", nil)
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	input := types.TemplateAnalysisInput{ImageData: data, MIMEType: mimeType}
	var result types.TemplateAnalysisOutput
	err = s.trackAI(ctx, config.OpTemplate, func(ctx context.Context) (*ai.TokenUsage, error) {
		var usage *ai.TokenUsage
		var aiErr error
		result, usage, aiErr = s.ai.AnalyzeTemplate(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	raw, err := json.Marshal(result.Style)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Failed to encode style sheet", err))
		return
	}

	settings := &store.UserSettings{
		UserID: userID,
		Style:  datatypes.JSON(raw),
	}
	// Carry the page size over; the upsert replaces the whole row
	if existing, getErr := s.store.GetSettings(ctx, userID); getErr == nil {
		settings.PageSize = existing.PageSize
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(attribute.String("style.font", result.Style.FontFamily))
	s.writeData(w, http.StatusOK, result)
}

// readUpload parses a multipart upload: the userId form field plus the file
// itself, size-checked against the configured cap
func (s *Server) readUpload(r *http.Request) (uuid.UUID, []byte, error) {
	maxBytes := s.cfg.PDF.MaxUploadBytes
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return uuid.Nil, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Request must be a multipart form upload", err)
	}

	userID, err := parseUUID("userId", r.FormValue("userId"))
	if err != nil {
		return uuid.Nil, nil, err
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		return uuid.Nil, nil, err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return uuid.Nil, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"file form field is required", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.LogError(err, "Failed to close upload")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return uuid.Nil, nil, errors.NewIOError(errors.ErrCodeInvalidRequest,
			"Failed to read upload", err)
	}
	if err := pdf.ValidateUpload(data, maxBytes); err != nil {
		return uuid.Nil, nil, err
	}
	return userID, data, nil
}

// styleForUser loads the user's extracted style sheet, falling back to the
// built-in defaults
func (s *Server) styleForUser(ctx context.Context, userID uuid.UUID) (types.StyleSheet, string) {
	style := pdf.DefaultStyle
	pageSize := s.cfg.PDF.PageSize

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return style, pageSize
	}
	if settings.PageSize != "" {
		pageSize = settings.PageSize
	}
	if len(settings.Style) > 0 {
		var stored types.StyleSheet
		if json.Unmarshal(settings.Style, &stored) == nil {
			style = stored
		}
	}
	return style, pageSize
}
