package types

// TailorResumeInput represents the input for tailoring a resume
type TailorResumeInput struct {
	BaseResume     string `json:"baseResume"`
	JobDescription string `json:"jobDescription"`
}

// ATSAnalysis represents the ATS scoring of a resume against a job
type ATSAnalysis struct {
	Score      int    `json:"score"`
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
}

// TailorResumeOutput represents the output from tailoring a resume
type TailorResumeOutput struct {
	TailoredResume string      `json:"tailoredResume"`
	ATSAnalysis    ATSAnalysis `json:"atsAnalysis"`
	ChangedSkills  []string    `json:"changedSkills"`
}

// ContextAnalysisInput carries a resume and the skills extracted from it
type ContextAnalysisInput struct {
	ResumeContent string   `json:"resumeContent"`
	Skills        []string `json:"skills"`
}

// SkillContext is the per-skill verdict from the context analyzer
type SkillContext struct {
	Skill       string `json:"skill"`
	HasContext  bool   `json:"hasContext"`
	Evidence    string `json:"evidence"`
	Suggestion  string `json:"suggestion"`
	WellKnownCo bool   `json:"wellKnownCompany"`
}

// ContextAnalysisOutput represents the context analyzer result
type ContextAnalysisOutput struct {
	Score    int            `json:"score"`
	Summary  string         `json:"summary"`
	Skills   []SkillContext `json:"skills"`
	Coverage float64        `json:"coverage"`
}

// UniquenessAnalysisInput carries a resume and job for differentiation analysis
type UniquenessAnalysisInput struct {
	ResumeContent  string `json:"resumeContent"`
	JobDescription string `json:"jobDescription"`
}

// Differentiator is a single standout element found in a resume
type Differentiator struct {
	Claim         string `json:"claim"`
	Rarity        string `json:"rarity"` // "common", "uncommon", "rare"
	HasComparable bool   `json:"hasComparable"`
	Evidence      string `json:"evidence"`
}

// UniquenessAnalysisOutput represents the uniqueness analyzer result
type UniquenessAnalysisOutput struct {
	Score           int              `json:"score"`
	Summary         string           `json:"summary"`
	Differentiators []Differentiator `json:"differentiators"`
	GenericPhrases  []string         `json:"genericPhrases"`
}

// ImpactAnalysisInput carries a resume for quantified-impact analysis
type ImpactAnalysisInput struct {
	ResumeContent string `json:"resumeContent"`
}

// ImpactStatement is a single achievement with its quantification verdict
type ImpactStatement struct {
	Statement   string `json:"statement"`
	Quantified  bool   `json:"quantified"`
	Metric      string `json:"metric"`
	Improvement string `json:"improvement"`
}

// ImpactAnalysisOutput represents the impact analyzer result
type ImpactAnalysisOutput struct {
	Score      int               `json:"score"`
	Summary    string            `json:"summary"`
	Statements []ImpactStatement `json:"statements"`
}

// CompanyResearchInput identifies the company to research
type CompanyResearchInput struct {
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
}

// CompanyResearchOutput represents the company research result
type CompanyResearchOutput struct {
	CompanyName    string   `json:"companyName"`
	WellKnown      bool     `json:"wellKnown"`
	Industry       string   `json:"industry"`
	SizeEstimate   string   `json:"sizeEstimate"`
	Culture        string   `json:"culture"`
	Comparables    []string `json:"comparables"`
	TalkingPoints  []string `json:"talkingPoints"`
	RecentSignals  []string `json:"recentSignals"`
	FitAssessment  string   `json:"fitAssessment"`
	ConfidenceNote string   `json:"confidenceNote"`
}

// ChatMessage is a single turn in a soft-skills assessment transcript
type ChatMessage struct {
	Role    string `json:"role"` // "interviewer" or "candidate"
	Content string `json:"content"`
}

// SoftSkillsTurnInput carries the transcript so far plus the latest answer
type SoftSkillsTurnInput struct {
	JobDescription string        `json:"jobDescription"`
	Transcript     []ChatMessage `json:"transcript"`
	Finalize       bool          `json:"finalize"`
}

// SoftSkillScore is a single scored soft-skill dimension
type SoftSkillScore struct {
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// SoftSkillsTurnOutput is either the next interviewer question or, when the
// session is finalized, the assessment summary with per-dimension scores.
type SoftSkillsTurnOutput struct {
	NextQuestion string           `json:"nextQuestion"`
	Completed    bool             `json:"completed"`
	Summary      string           `json:"summary"`
	Scores       []SoftSkillScore `json:"scores"`
	OverallScore int              `json:"overallScore"`
}

// TemplateAnalysisInput carries a rendered page image of a sample resume
type TemplateAnalysisInput struct {
	ImageData []byte `json:"-"`
	MIMEType  string `json:"mimeType"`
}

// StyleSheet is the declarative style extracted from a sample resume and fed
// into the PDF generator.
type StyleSheet struct {
	FontFamily   string  `json:"fontFamily"`
	BaseFontSize float64 `json:"baseFontSize"`
	HeadingSize  float64 `json:"headingSize"`
	MarginMM     float64 `json:"marginMM"`
	AccentColor  string  `json:"accentColor"` // hex, e.g. "#1a73e8"
	LineSpacing  float64 `json:"lineSpacing"`
	SectionCaps  bool    `json:"sectionCaps"`
}

// TemplateAnalysisOutput represents the style extraction result
type TemplateAnalysisOutput struct {
	Style StyleSheet `json:"style"`
	Notes string     `json:"notes"`
}

// ResumeSection is one titled block of resume content
type ResumeSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// ResumeContent is the structured resume body stored as JSON and rendered to PDF
type ResumeContent struct {
	FullName string          `json:"fullName"`
	Headline string          `json:"headline"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Location string          `json:"location"`
	Summary  string          `json:"summary"`
	Sections []ResumeSection `json:"sections"`
	Skills   []string        `json:"skills"`
}
