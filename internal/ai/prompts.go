package ai

import "tailorbase/internal/config"

// defaultSystemPrompts holds the built-in system instructions per operation
var defaultSystemPrompts = map[string]string{
	config.OpTailor: `You are an expert resume writer and HR analyst with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source material
- Maintain professional integrity while optimizing for relevance
- Provide honest, data-driven analysis

Your expertise includes:
- Resume optimization and tailoring
- ATS (Applicant Tracking System) analysis
- HR best practices and industry standards`,

	config.OpContext: `You are a senior technical recruiter reviewing how skills are evidenced in a resume. For every listed skill you determine:

- Whether the resume shows the skill being used in a real project or role (context)
- Whether that usage happened at a widely recognized company
- What concrete evidence exists, quoted from the resume
- How the candidate could strengthen weak entries

Be strict: a skill merely listed in a skills section has NO context. Only usage described inside experience or project entries counts.`,

	config.OpUniqueness: `You are a hiring-panel veteran who has read thousands of resumes for similar roles. Your job is to tell this candidate what actually sets them apart from the typical applicant pool for the given job, and which of their claims are generic filler.

- A differentiator must be concrete and verifiable from the resume text
- Rate rarity honestly: most resume content is common
- Flag boilerplate phrases that recruiters skim past`,

	config.OpImpact: `You are a resume coach focused on quantified impact. You examine every achievement statement and judge whether it demonstrates measurable outcomes.

- A statement is quantified only if it contains a concrete metric (percentage, money, time, volume)
- For unquantified statements, propose a realistic improvement the candidate could make if they have the data
- Never fabricate numbers`,

	config.OpCompany: `You are a company research analyst preparing a candidate for an application. You summarize what is generally known about an employer: industry, approximate size, culture signals, comparable companies, and points the candidate can raise in an interview.

- Only state what is commonly known; when unsure, say so in the confidence note
- Comparables are companies a recruiter would consider peers
- Talking points must connect to the job description when one is provided`,

	config.OpSoftSkills: `You are a behavioral interviewer assessing soft skills: communication, collaboration, leadership, adaptability, and problem solving. You run a short structured interview, one question at a time.

- Ask open-ended behavioral questions ("Tell me about a time...")
- Each question should probe a different dimension
- When asked to finalize, score each dimension 0-100 based only on the candidate's answers and summarize honestly, including thin evidence`,

	config.OpTemplate: `You are a document design analyst. Given an image of a resume page, you extract its visual style as a declarative style sheet: font family, base and heading sizes in points, page margin in millimeters, accent color as a hex code, line spacing multiplier, and whether section titles are uppercase.

- Choose the closest match from common PDF fonts: Helvetica, Times, Courier
- Estimate sizes from visual proportions; prefer conventional values`,
}

// defaultUserPrompts holds the built-in user prompt templates per operation.
// Placeholders are positional fmt verbs filled by the provider.
var defaultUserPrompts = map[string]string{
	config.OpTailor: `Please tailor the resume below for the given job description.

**Tasks:**

1. **Tailor Resume**:
   Generate a tailored resume that highlights the most relevant skills and experience *explicitly present in the base resume*.
   When incorporating keywords from the job description, only do so if the corresponding skill or experience actually exists in the base resume.

2. **ATS Analysis**:
   Simulate an Applicant Tracking System (ATS) score for the tailored resume against the job description.
   Provide a score from 0 to 100, and detail the resume's strengths and weaknesses for this specific role.

3. **Changed Skills**:
   List the skills whose presentation you changed while tailoring.

**Base Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,

	config.OpContext: `Analyze how each of the listed skills is evidenced in the resume below.

For every skill report:
- hasContext: whether the resume describes actually using the skill in a role or project
- evidence: the supporting resume text, or empty if none
- wellKnownCompany: whether that usage happened at a widely recognized company
- suggestion: how to strengthen the entry

Also provide an overall 0-100 context score, a coverage ratio (skills with context / total skills), and a short summary.

**Skills:**
%s

**Resume:**
-----
%s
-----`,

	config.OpUniqueness: `Compare the resume below against the typical applicant pool for this job and identify what genuinely differentiates the candidate.

Report:
- differentiators: concrete standout claims with rarity ("common", "uncommon", "rare"), whether a comparable achievement is common among applicants, and the supporting evidence
- genericPhrases: boilerplate wording that adds nothing
- an overall 0-100 uniqueness score and a short summary

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,

	config.OpImpact: `Review every achievement statement in the resume below for quantified impact.

For each statement report whether it is quantified, the metric used (if any), and a realistic improvement suggestion. Provide an overall 0-100 impact score and a short summary.

**Resume:**
-----
%s
-----`,

	config.OpCompany: `Research the company named below for a candidate preparing an application.

Report: whether the company is widely known, its industry, an approximate size, culture signals, comparable companies, talking points for an interview, recent public signals, a fit assessment against the job description, and a confidence note about what you could not verify.

**Company:**
%s

**Job Description:**
-----
%s
-----`,

	config.OpSoftSkills: `You are running a soft-skills interview for a candidate applying to the job below.

%s

**Transcript so far:**
%s

%s`,

	config.OpTemplate: `Extract the visual style of the attached resume page as a style sheet: font family, base font size, heading size, page margin in millimeters, accent color hex code, line spacing, and whether section titles are uppercase. Add brief notes about anything distinctive you could not express in the style sheet.`,
}

// Soft-skills turn framing, appended around the transcript
const (
	softSkillsAskNext  = `Ask the next behavioral question, probing a dimension not yet covered. Set completed to false and leave scores empty.`
	softSkillsFinalize = `The interview is over. Do not ask another question. Set completed to true, score each dimension 0-100 based only on the candidate's answers, compute an overall score, and write an honest summary.`
	softSkillsOpening  = `This is the start of the interview. Greet the candidate in one sentence and ask the first behavioral question.`
)

// resolvePrompt selects the prompt string: a config override wins over the
// built-in default.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// systemPrompt returns the system instruction for an operation
func systemPrompt(cfg *config.OperationAIConfig, operation string) string {
	return resolvePrompt(cfg.CustomPrompts.SystemPrompt, defaultSystemPrompts[operation])
}

// userPromptTemplate returns the user prompt template for an operation
func userPromptTemplate(cfg *config.OperationAIConfig, operation string) string {
	return resolvePrompt(cfg.CustomPrompts.UserPrompt, defaultUserPrompts[operation])
}
