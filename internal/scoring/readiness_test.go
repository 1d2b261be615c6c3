package scoring

import (
	"testing"

	"tailorbase/internal/types"
)

func TestContextScore(t *testing.T) {
	tests := []struct {
		name   string
		skills []types.SkillContext
		want   int
	}{
		{"no skills", nil, 0},
		{"well-known company", []types.SkillContext{{WellKnownCo: true}}, 100},
		{"has context only", []types.SkillContext{{HasContext: true}}, 60},
		{"bare listing", []types.SkillContext{{}}, 30},
		{
			"mixed",
			[]types.SkillContext{{WellKnownCo: true}, {HasContext: true}, {}},
			63, // (100+60+30)/3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContextScore(types.ContextAnalysisOutput{Skills: tt.skills})
			if got != tt.want {
				t.Errorf("ContextScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUniquenessScore(t *testing.T) {
	tests := []struct {
		name string
		diff []types.Differentiator
		want int
	}{
		{"no differentiators", nil, 0},
		{"rare without comparable", []types.Differentiator{{Rarity: "rare"}}, 100},
		{"uncommon without comparable", []types.Differentiator{{Rarity: "uncommon"}}, 80},
		{"rare but comparable", []types.Differentiator{{Rarity: "rare", HasComparable: true}}, 60},
		{"common", []types.Differentiator{{Rarity: "common"}}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniquenessScore(types.UniquenessAnalysisOutput{Differentiators: tt.diff})
			if got != tt.want {
				t.Errorf("UniquenessScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestImpactScore(t *testing.T) {
	tests := []struct {
		name       string
		statements []types.ImpactStatement
		want       int
	}{
		{"no statements", nil, 0},
		{"quantified", []types.ImpactStatement{{Quantified: true, Metric: "40%"}}, 100},
		{"metric without number", []types.ImpactStatement{{Metric: "latency"}}, 60},
		{"vague", []types.ImpactStatement{{Statement: "improved things"}}, 30},
		{
			"mixed",
			[]types.ImpactStatement{{Quantified: true}, {}},
			65, // (100+30)/2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImpactScore(types.ImpactAnalysisOutput{Statements: tt.statements})
			if got != tt.want {
				t.Errorf("ImpactScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSoftSkillsScore(t *testing.T) {
	if got := SoftSkillsScore(types.SoftSkillsTurnOutput{Completed: false, OverallScore: 90}); got != 0 {
		t.Errorf("unfinalized session scored %d, want 0", got)
	}
	if got := SoftSkillsScore(types.SoftSkillsTurnOutput{Completed: true, OverallScore: 72}); got != 72 {
		t.Errorf("SoftSkillsScore = %d, want 72", got)
	}
	if got := SoftSkillsScore(types.SoftSkillsTurnOutput{Completed: true, OverallScore: 140}); got != 100 {
		t.Errorf("out-of-range score = %d, want clamped 100", got)
	}
}

func TestCompanyFitScore(t *testing.T) {
	tests := []struct {
		name string
		out  types.CompanyResearchOutput
		want int
	}{
		{"well known", types.CompanyResearchOutput{WellKnown: true}, 100},
		{"has comparables", types.CompanyResearchOutput{Comparables: []string{"Acme"}}, 80},
		{"industry only", types.CompanyResearchOutput{Industry: "fintech"}, 60},
		{"unknown", types.CompanyResearchOutput{}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompanyFitScore(tt.out); got != tt.want {
				t.Errorf("CompanyFitScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComposite(t *testing.T) {
	tests := []struct {
		name      string
		sub       Subscores
		wantScore int
		wantBand  string
	}{
		{
			"all perfect",
			Subscores{Context: 100, Uniqueness: 100, Impact: 100, SoftSkills: 100, CompanyFit: 100},
			100, BandReady,
		},
		{
			"all zero",
			Subscores{},
			0, BandNeedsWork,
		},
		{
			"weighted mix",
			// 80*.25 + 60*.20 + 100*.25 + 40*.15 + 40*.15 = 20+12+25+6+6 = 69
			Subscores{Context: 80, Uniqueness: 60, Impact: 100, SoftSkills: 40, CompanyFit: 40},
			69, BandNear,
		},
		{
			"ready boundary",
			// 80 everywhere gives exactly 80
			Subscores{Context: 80, Uniqueness: 80, Impact: 80, SoftSkills: 80, CompanyFit: 80},
			80, BandReady,
		},
		{
			"clamps out-of-range inputs",
			Subscores{Context: 150, Uniqueness: -20, Impact: 100, SoftSkills: 100, CompanyFit: 100},
			// 100*.25 + 0*.20 + 100*.25 + 100*.15 + 100*.15 = 80
			80, BandReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Composite(tt.sub, nil)
			if got.Score != tt.wantScore {
				t.Errorf("Composite score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Band != tt.wantBand {
				t.Errorf("Composite band = %q, want %q", got.Band, tt.wantBand)
			}
		})
	}

	t.Run("missing modules are reported", func(t *testing.T) {
		got := Composite(Subscores{Context: 60}, []string{"impact", "company"})
		if len(got.Missing) != 2 {
			t.Errorf("Missing = %v, want two entries", got.Missing)
		}
	})
}

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightContext + WeightUniqueness + WeightImpact + WeightSoftSkills + WeightCompanyFit
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("weights sum to %f, want 1.0", sum)
	}
}
