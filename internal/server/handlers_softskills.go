package server

import (
	"context"
	"encoding/json"
	"net/http"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/store"
	"tailorbase/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// The interview finalizes after this many candidate answers
const softSkillsMaxAnswers = 5

type SoftSkillsStartRequest struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId,omitempty"`
}

type SoftSkillsStartResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Question  string    `json:"question"`
}

type SoftSkillsChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type SoftSkillsChatResponse struct {
	SessionID    uuid.UUID              `json:"sessionId"`
	Completed    bool                   `json:"completed"`
	Question     string                 `json:"question,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	Scores       []types.SoftSkillScore `json:"scores,omitempty"`
	OverallScore int                    `json:"overallScore,omitempty"`
}

// softSkillsStartHandler opens an interview session and returns the first
// interviewer question
func (s *Server) softSkillsStartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.soft_skills.start")
	defer span.End()

	var req SoftSkillsStartRequest
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
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	var jobID *uuid.UUID
	var jobDescription string
	if req.JobID != "" {
		job, err := s.loadUserJob(ctx, userID, req.JobID)
		if err != nil {
			span.RecordError(err)
			s.writeError(w, err)
			return
		}
		jobID = &job.ID
		jobDescription = job.Description
	}

	input := types.SoftSkillsTurnInput{JobDescription: jobDescription}
	var result types.SoftSkillsTurnOutput
	err = s.trackAI(ctx, config.OpSoftSkills, func(ctx context.Context) (*ai.TokenUsage, error) {
		var usage *ai.TokenUsage
		var aiErr error
		result, usage, aiErr = s.ai.SoftSkillsTurn(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	transcript := []types.ChatMessage{
		{Role: "interviewer", Content: result.NextQuestion},
	}
	raw, err := json.Marshal(transcript)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Failed to encode transcript", err))
		return
	}

	assessment := &store.SoftSkillsAssessment{
		UserID:     userID,
		JobID:      jobID,
		Status:     store.AssessmentStatusActive,
		Transcript: datatypes.JSON(raw),
	}
	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(attribute.String("session.id", assessment.ID.String()))
	s.writeData(w, http.StatusCreated, SoftSkillsStartResponse{
		SessionID: assessment.ID,
		Question:  result.NextQuestion,
	})
}

// softSkillsChatHandler records a candidate answer and either asks the next
// question or, once enough answers are in, finalizes the assessment
func (s *Server) softSkillsChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.soft_skills.chat")
	defer span.End()

	var req SoftSkillsChatRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	sessionID, err := parseUUID("sessionId", req.SessionID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if err := requireField("message", req.Message); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if err := s.boundField("message", req.Message); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	assessment, err := s.store.GetAssessment(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if assessment.Status == store.AssessmentStatusCompleted {
		err := errors.NewConflictError(errors.ErrCodeSessionCompleted,
			"Assessment session is already completed", nil)
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	var transcript []types.ChatMessage
	if len(assessment.Transcript) > 0 {
		if err := json.Unmarshal(assessment.Transcript, &transcript); err != nil {
			span.RecordError(err)
			s.writeError(w, errors.NewInternalError(errors.ErrCodeInvalidFormat,
				"Stored transcript is unreadable", err))
			return
		}
	}
	transcript = append(transcript, types.ChatMessage{Role: "candidate", Content: req.Message})

	answers := 0
	for _, msg := range transcript {
		if msg.Role == "candidate" {
			answers++
		}
	}
	finalize := answers >= softSkillsMaxAnswers

	var jobDescription string
	if assessment.JobID != nil {
		if job, err := s.store.GetJob(ctx, *assessment.JobID); err == nil {
			jobDescription = job.Description
		}
	}

	input := types.SoftSkillsTurnInput{
		JobDescription: jobDescription,
		Transcript:     transcript,
		Finalize:       finalize,
	}
	var result types.SoftSkillsTurnOutput
	err = s.trackAI(ctx, config.OpSoftSkills, func(ctx context.Context) (*ai.TokenUsage, error) {
		var usage *ai.TokenUsage
		var aiErr error
		result, usage, aiErr = s.ai.SoftSkillsTurn(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(
		attribute.String("session.id", assessment.ID.String()),
		attribute.Int("session.answers", answers),
		attribute.Bool("session.finalized", result.Completed),
	)

	if result.Completed {
		s.completeAssessment(ctx, assessment, transcript, result)
		s.writeData(w, http.StatusOK, SoftSkillsChatResponse{
			SessionID:    assessment.ID,
			Completed:    true,
			Summary:      result.Summary,
			Scores:       result.Scores,
			OverallScore: result.OverallScore,
		})
		return
	}

	transcript = append(transcript, types.ChatMessage{Role: "interviewer", Content: result.NextQuestion})
	if raw, err := json.Marshal(transcript); err == nil {
		assessment.Transcript = datatypes.JSON(raw)
	}
	if err := s.store.UpdateAssessment(ctx, assessment); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, SoftSkillsChatResponse{
		SessionID: assessment.ID,
		Completed: false,
		Question:  result.NextQuestion,
	})
}

// completeAssessment writes the terminal session state and records the
// module result. Save failures are logged; the caller already has the
// assessment output.
func (s *Server) completeAssessment(ctx context.Context, assessment *store.SoftSkillsAssessment, transcript []types.ChatMessage, result types.SoftSkillsTurnOutput) {
	if raw, err := json.Marshal(transcript); err == nil {
		assessment.Transcript = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(result.Scores); err == nil {
		assessment.Scores = datatypes.JSON(raw)
	}
	overall := result.OverallScore
	assessment.Summary = result.Summary
	assessment.OverallScore = &overall
	assessment.Status = store.AssessmentStatusCompleted

	if err := s.store.UpdateAssessment(ctx, assessment); err != nil {
		s.logger.LogError(err, "Failed to finalize assessment", "session_id", assessment.ID)
		return
	}
	s.persistResult(ctx, assessment.UserID, nil, assessment.JobID,
		config.OpSoftSkills, result.OverallScore, result, nil)
}
