// Package scoring computes the recruiter-readiness composite. Every function
// is a pure, rule-based lookup over analyzer output so results are
// reproducible for the same inputs.
package scoring

import "tailorbase/internal/types"

// Composite weights. They sum to 1.
const (
	WeightContext    = 0.25
	WeightUniqueness = 0.20
	WeightImpact     = 0.25
	WeightSoftSkills = 0.15
	WeightCompanyFit = 0.15
)

// Band thresholds
const (
	readyThreshold = 80
	nearThreshold  = 60
)

// Readiness bands
const (
	BandReady     = "ready"
	BandNear      = "near"
	BandNeedsWork = "needs-work"
)

// Subscores are the five rule-based inputs to the composite
type Subscores struct {
	Context    int `json:"context"`
	Uniqueness int `json:"uniqueness"`
	Impact     int `json:"impact"`
	SoftSkills int `json:"softSkills"`
	CompanyFit int `json:"companyFit"`
}

// Readiness is the composite verdict
type Readiness struct {
	Score     int       `json:"score"`
	Band      string    `json:"band"`
	Subscores Subscores `json:"subscores"`
	// Missing lists modules that have not been run yet; their subscore
	// counts as zero.
	Missing []string `json:"missing,omitempty"`
}

// ContextScore rates skill evidence: usage at a well-known company scores
// highest, any real usage context next, a bare listing lowest. The result is
// the average over all skills.
func ContextScore(out types.ContextAnalysisOutput) int {
	if len(out.Skills) == 0 {
		return 0
	}
	total := 0
	for _, skill := range out.Skills {
		switch {
		case skill.WellKnownCo:
			total += 100
		case skill.HasContext:
			total += 60
		default:
			total += 30
		}
	}
	return total / len(out.Skills)
}

// UniquenessScore rates differentiators by rarity, discounting claims that
// typical applicants can match.
func UniquenessScore(out types.UniquenessAnalysisOutput) int {
	if len(out.Differentiators) == 0 {
		return 0
	}
	total := 0
	for _, d := range out.Differentiators {
		switch {
		case d.Rarity == "rare" && !d.HasComparable:
			total += 100
		case d.Rarity == "uncommon" && !d.HasComparable:
			total += 80
		case d.HasComparable:
			total += 60
		default:
			total += 30
		}
	}
	return total / len(out.Differentiators)
}

// ImpactScore rates achievement statements: quantified with a metric scores
// full, a metric without a hard number partial, unquantified lowest.
func ImpactScore(out types.ImpactAnalysisOutput) int {
	if len(out.Statements) == 0 {
		return 0
	}
	total := 0
	for _, st := range out.Statements {
		switch {
		case st.Quantified:
			total += 100
		case st.Metric != "":
			total += 60
		default:
			total += 30
		}
	}
	return total / len(out.Statements)
}

// SoftSkillsScore passes through the finalized interview score. Sessions that
// were never finalized contribute nothing.
func SoftSkillsScore(out types.SoftSkillsTurnOutput) int {
	if !out.Completed {
		return 0
	}
	return clamp(out.OverallScore)
}

// CompanyFitScore rates how much is known about the employer: a widely known
// company scores highest, one with recognized peers next, an identified
// industry after that.
func CompanyFitScore(out types.CompanyResearchOutput) int {
	switch {
	case out.WellKnown:
		return 100
	case len(out.Comparables) > 0:
		return 80
	case out.Industry != "":
		return 60
	default:
		return 30
	}
}

// Composite folds the five subscores into the weighted readiness score.
// Missing modules are named so callers can tell a weak profile from an
// incomplete one.
func Composite(sub Subscores, missing []string) Readiness {
	score := float64(clamp(sub.Context))*WeightContext +
		float64(clamp(sub.Uniqueness))*WeightUniqueness +
		float64(clamp(sub.Impact))*WeightImpact +
		float64(clamp(sub.SoftSkills))*WeightSoftSkills +
		float64(clamp(sub.CompanyFit))*WeightCompanyFit

	rounded := int(score + 0.5)

	return Readiness{
		Score:     rounded,
		Band:      band(rounded),
		Subscores: sub,
		Missing:   missing,
	}
}

func band(score int) string {
	switch {
	case score >= readyThreshold:
		return BandReady
	case score >= nearThreshold:
		return BandNear
	default:
		return BandNeedsWork
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
