package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/observability"
	"tailorbase/internal/scoring"
	"tailorbase/internal/store"
	"tailorbase/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// Research older than this is considered stale and refreshed
const companyCacheTTL = 7 * 24 * time.Hour

// ModuleRequest identifies what an analysis module runs against. ResumeID
// and JobID are required per module, not universally.
type ModuleRequest struct {
	UserID   string `json:"userId"`
	ResumeID string `json:"resumeId,omitempty"`
	JobID    string `json:"jobId,omitempty"`
}

// tailorHandler rewrites a stored resume against a stored job posting
func (s *Server) tailorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.tailor")
	defer span.End()

	var req ModuleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, resume, err := s.loadUserResume(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	job, err := s.loadUserJob(ctx, userID, req.JobID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(resume.RawText)),
		attribute.Int("request.job_length", len(job.Description)),
	)

	input := types.TailorResumeInput{
		BaseResume:     resume.RawText,
		JobDescription: job.Description,
	}

	var result types.TailorResumeOutput
	var usage *ai.TokenUsage
	err = s.trackAI(ctx, config.OpTailor, func(ctx context.Context) (*ai.TokenUsage, error) {
		var aiErr error
		result, usage, aiErr = s.ai.TailorResume(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.recordMetric(ctx, observability.MetricResumeTailored, false)
		s.writeError(w, err)
		return
	}

	s.persistResult(ctx, userID, &resume.ID, &job.ID, config.OpTailor,
		result.ATSAnalysis.Score, result, usage)
	s.recordMetric(ctx, observability.MetricResumeTailored, true,
		attribute.Int("ats.score", result.ATSAnalysis.Score))
	span.SetAttributes(attribute.Int("ats.score", result.ATSAnalysis.Score))

	s.writeData(w, http.StatusOK, result)
}

// contextHandler runs the per-skill context analyzer on a stored resume
func (s *Server) contextHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.context")
	defer span.End()

	var req ModuleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, resume, err := s.loadUserResume(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	skills := resumeSkills(resume)
	if len(skills) == 0 {
		err := errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume has no extracted skills to analyze", nil)
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	input := types.ContextAnalysisInput{
		ResumeContent: resume.RawText,
		Skills:        skills,
	}

	var result types.ContextAnalysisOutput
	var usage *ai.TokenUsage
	err = s.trackAI(ctx, config.OpContext, func(ctx context.Context) (*ai.TokenUsage, error) {
		var aiErr error
		result, usage, aiErr = s.ai.AnalyzeContext(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	s.persistResult(ctx, userID, &resume.ID, nil, config.OpContext,
		result.Score, result, usage)
	span.SetAttributes(
		attribute.Int("context.score", result.Score),
		attribute.Int("context.skills", len(result.Skills)),
	)

	s.writeData(w, http.StatusOK, result)
}

// uniquenessHandler runs the differentiator analyzer on a resume/job pair
func (s *Server) uniquenessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.uniqueness")
	defer span.End()

	var req ModuleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, resume, err := s.loadUserResume(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	job, err := s.loadUserJob(ctx, userID, req.JobID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	input := types.UniquenessAnalysisInput{
		ResumeContent:  resume.RawText,
		JobDescription: job.Description,
	}

	var result types.UniquenessAnalysisOutput
	var usage *ai.TokenUsage
	err = s.trackAI(ctx, config.OpUniqueness, func(ctx context.Context) (*ai.TokenUsage, error) {
		var aiErr error
		result, usage, aiErr = s.ai.AnalyzeUniqueness(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	s.persistResult(ctx, userID, &resume.ID, &job.ID, config.OpUniqueness,
		result.Score, result, usage)
	span.SetAttributes(attribute.Int("uniqueness.score", result.Score))

	s.writeData(w, http.StatusOK, result)
}

// impactHandler runs the quantified-impact analyzer on a stored resume
func (s *Server) impactHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.impact")
	defer span.End()

	var req ModuleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, resume, err := s.loadUserResume(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	input := types.ImpactAnalysisInput{ResumeContent: resume.RawText}

	var result types.ImpactAnalysisOutput
	var usage *ai.TokenUsage
	err = s.trackAI(ctx, config.OpImpact, func(ctx context.Context) (*ai.TokenUsage, error) {
		var aiErr error
		result, usage, aiErr = s.ai.AnalyzeImpact(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	s.persistResult(ctx, userID, &resume.ID, nil, config.OpImpact,
		result.Score, result, usage)
	span.SetAttributes(attribute.Int("impact.score", result.Score))

	s.writeData(w, http.StatusOK, result)
}

// CompanyResearchResponse wraps research output with its cache provenance
type CompanyResearchResponse struct {
	Research types.CompanyResearchOutput `json:"research"`
	Cached   bool                        `json:"cached"`
}

// companyHandler researches the company behind a stored job. Fresh results
// are cached on the company row so repeat lookups skip the AI call.
func (s *Server) companyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.company")
	defer span.End()

	var req ModuleRequest
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
	job, err := s.loadUserJob(ctx, userID, req.JobID)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if job.CompanyName == "" {
		err := errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Job has no company name to research", nil)
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	span.SetAttributes(attribute.String("company.name", job.CompanyName))

	if cached, ok := s.cachedResearch(ctx, job.CompanyName); ok {
		span.SetAttributes(attribute.Bool("company.cached", true))
		s.writeData(w, http.StatusOK, CompanyResearchResponse{Research: cached, Cached: true})
		return
	}

	input := types.CompanyResearchInput{
		CompanyName:    job.CompanyName,
		JobDescription: job.Description,
	}

	var result types.CompanyResearchOutput
	var usage *ai.TokenUsage
	err = s.trackAI(ctx, config.OpCompany, func(ctx context.Context) (*ai.TokenUsage, error) {
		var aiErr error
		result, usage, aiErr = s.ai.ResearchCompany(ctx, input)
		return usage, aiErr
	})
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	s.cacheResearch(ctx, job, result)
	s.persistResult(ctx, userID, nil, &job.ID, config.OpCompany,
		scoring.CompanyFitScore(result), result, usage)

	s.writeData(w, http.StatusOK, CompanyResearchResponse{Research: result, Cached: false})
}

// readinessHandler computes the recruiter-readiness composite from stored
// analyzer results. No AI call happens here; the arithmetic is deterministic.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.readiness")
	defer span.End()

	var req ModuleRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	userID, resume, err := s.loadUserResume(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}

	var sub scoring.Subscores
	var missing []string

	var contextOut types.ContextAnalysisOutput
	if s.latestPayload(ctx, userID, resume.ID, config.OpContext, &contextOut) {
		sub.Context = scoring.ContextScore(contextOut)
	} else {
		missing = append(missing, config.OpContext)
	}

	var uniquenessOut types.UniquenessAnalysisOutput
	if s.latestPayload(ctx, userID, resume.ID, config.OpUniqueness, &uniquenessOut) {
		sub.Uniqueness = scoring.UniquenessScore(uniquenessOut)
	} else {
		missing = append(missing, config.OpUniqueness)
	}

	var impactOut types.ImpactAnalysisOutput
	if s.latestPayload(ctx, userID, resume.ID, config.OpImpact, &impactOut) {
		sub.Impact = scoring.ImpactScore(impactOut)
	} else {
		missing = append(missing, config.OpImpact)
	}

	if softSkills, ok := s.latestSoftSkills(ctx, userID); ok {
		sub.SoftSkills = scoring.SoftSkillsScore(softSkills)
	} else {
		missing = append(missing, config.OpSoftSkills)
	}

	if research, ok := s.researchForJob(ctx, userID, req.JobID); ok {
		sub.CompanyFit = scoring.CompanyFitScore(research)
	} else {
		missing = append(missing, config.OpCompany)
	}

	readiness := scoring.Composite(sub, missing)
	s.persistResult(ctx, userID, &resume.ID, nil, "readiness",
		readiness.Score, readiness, nil)

	span.SetAttributes(
		attribute.Int("readiness.score", readiness.Score),
		attribute.String("readiness.band", readiness.Band),
		attribute.Int("readiness.missing", len(missing)),
	)

	s.writeData(w, http.StatusOK, readiness)
}

// loadUserResume validates the request IDs and loads a resume owned by the
// requesting user
func (s *Server) loadUserResume(ctx context.Context, req ModuleRequest) (uuid.UUID, *store.Resume, error) {
	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	resumeID, err := parseUUID("resumeId", req.ResumeID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	resume, err := s.store.GetResume(ctx, resumeID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if resume.UserID != userID {
		return uuid.Nil, nil, errors.NewNotFoundError(errors.ErrCodeNotFound,
			"resume not found", nil)
	}
	return userID, resume, nil
}

// loadUserJob loads a job owned by the requesting user
func (s *Server) loadUserJob(ctx context.Context, userID uuid.UUID, rawJobID string) (*store.Job, error) {
	jobID, err := parseUUID("jobId", rawJobID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, errors.NewNotFoundError(errors.ErrCodeNotFound,
			"job not found", nil)
	}
	return job, nil
}

// resumeSkills decodes the extracted skills column
func resumeSkills(resume *store.Resume) []string {
	if len(resume.Skills) == 0 {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(resume.Skills, &skills); err != nil {
		return nil
	}
	return skills
}

// latestPayload loads the newest stored result of one module into out
func (s *Server) latestPayload(ctx context.Context, userID, resumeID uuid.UUID, module string, out any) bool {
	result, err := s.store.LatestModuleResult(ctx, userID, resumeID, module)
	if err != nil {
		return false
	}
	return json.Unmarshal(result.Payload, out) == nil
}

// latestSoftSkills reconstructs the scoring input from the newest completed
// assessment
func (s *Server) latestSoftSkills(ctx context.Context, userID uuid.UUID) (types.SoftSkillsTurnOutput, bool) {
	assessment, err := s.store.LatestCompletedAssessment(ctx, userID)
	if err != nil || assessment.OverallScore == nil {
		return types.SoftSkillsTurnOutput{}, false
	}
	out := types.SoftSkillsTurnOutput{
		Completed:    true,
		Summary:      assessment.Summary,
		OverallScore: *assessment.OverallScore,
	}
	if len(assessment.Scores) > 0 {
		_ = json.Unmarshal(assessment.Scores, &out.Scores)
	}
	return out, true
}

// researchForJob resolves the cached company research behind an optional job
func (s *Server) researchForJob(ctx context.Context, userID uuid.UUID, rawJobID string) (types.CompanyResearchOutput, bool) {
	if rawJobID == "" {
		return types.CompanyResearchOutput{}, false
	}
	job, err := s.loadUserJob(ctx, userID, rawJobID)
	if err != nil || job.CompanyName == "" {
		return types.CompanyResearchOutput{}, false
	}
	company, err := s.store.GetCompanyByName(ctx, job.CompanyName)
	if err != nil || len(company.Research) == 0 {
		return types.CompanyResearchOutput{}, false
	}
	var research types.CompanyResearchOutput
	if json.Unmarshal(company.Research, &research) != nil {
		return types.CompanyResearchOutput{}, false
	}
	return research, true
}

// cachedResearch returns stored research when it is still fresh
func (s *Server) cachedResearch(ctx context.Context, name string) (types.CompanyResearchOutput, bool) {
	company, err := s.store.GetCompanyByName(ctx, name)
	if err != nil || len(company.Research) == 0 || company.ResearchedAt == nil {
		return types.CompanyResearchOutput{}, false
	}
	if time.Since(*company.ResearchedAt) > companyCacheTTL {
		return types.CompanyResearchOutput{}, false
	}
	var research types.CompanyResearchOutput
	if json.Unmarshal(company.Research, &research) != nil {
		return types.CompanyResearchOutput{}, false
	}
	return research, true
}

// cacheResearch stores fresh research on the company row and links the job
// to it
func (s *Server) cacheResearch(ctx context.Context, job *store.Job, research types.CompanyResearchOutput) {
	raw, err := json.Marshal(research)
	if err != nil {
		s.logger.LogError(err, "Failed to encode company research", "company", job.CompanyName)
		return
	}
	now := time.Now()

	company, err := s.store.GetCompanyByName(ctx, job.CompanyName)
	if err != nil {
		company = &store.Company{Name: job.CompanyName}
		company.Industry = research.Industry
		company.Research = datatypes.JSON(raw)
		company.ResearchedAt = &now
		if err := s.store.CreateCompany(ctx, company); err != nil {
			s.logger.LogError(err, "Failed to cache company research", "company", job.CompanyName)
			return
		}
	} else {
		company.Industry = research.Industry
		company.Research = datatypes.JSON(raw)
		company.ResearchedAt = &now
		if err := s.store.UpdateCompany(ctx, company); err != nil {
			s.logger.LogError(err, "Failed to refresh company research", "company", job.CompanyName)
			return
		}
	}

	if job.CompanyID == nil {
		job.CompanyID = &company.ID
		if err := s.store.UpdateJob(ctx, job); err != nil {
			s.logger.LogError(err, "Failed to link job to company", "job_id", job.ID)
		}
	}
}

// persistResult stores an analyzer run and bumps the module counter.
// Persistence failures are logged, not surfaced: the analysis already
// succeeded and the caller has its output.
func (s *Server) persistResult(ctx context.Context, userID uuid.UUID, resumeID, jobID *uuid.UUID, module string, score int, payload any, usage *ai.TokenUsage) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.LogError(err, "Failed to encode module result", "module", module)
		return
	}

	result := &store.ModuleResult{
		UserID:   userID,
		ResumeID: resumeID,
		JobID:    jobID,
		Module:   module,
		Score:    score,
		Payload:  datatypes.JSON(raw),
	}
	if usage != nil {
		result.InputTokens = usage.InputTokens
		result.OutputTokens = usage.OutputTokens
	}

	if err := s.store.CreateModuleResult(ctx, result); err != nil {
		s.logger.LogError(err, "Failed to persist module result", "module", module)
		return
	}
	s.recordMetric(ctx, observability.MetricModuleAnalyzed, true,
		attribute.String("module", module),
		attribute.Int("score", score))
}
