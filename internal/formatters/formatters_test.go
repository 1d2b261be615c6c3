package formatters

import (
	"strings"
	"testing"

	"tailorbase/internal/types"
)

func sampleTailorOutput() *types.TailorResumeOutput {
	return &types.TailorResumeOutput{
		TailoredResume: "Jane Doe\nBackend engineer with Go and Postgres experience.",
		ATSAnalysis: types.ATSAnalysis{
			Score:      82,
			Strengths:  "Strong keyword match",
			Weaknesses: "Missing certifications section",
		},
		ChangedSkills: []string{"Go", "PostgreSQL"},
	}
}

func TestFormatRegistryRouting(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		data    any
		want    []string
		wantErr bool
	}{
		{
			name:   "tailor text",
			format: "text",
			data:   sampleTailorOutput(),
			want:   []string{"Tailored Resume", "Score: 82/100", "Go, PostgreSQL"},
		},
		{
			name:   "tailor markdown",
			format: "markdown",
			data:   sampleTailorOutput(),
			want:   []string{"# Tailored Resume", "**Score:** 82/100", "- Go"},
		},
		{
			name:   "json falls back to any formatter",
			format: "json",
			data:   &types.ImpactAnalysisOutput{Score: 55, Summary: "half quantified"},
			want:   []string{`"score": 55`, `"summary": "half quantified"`},
		},
		{
			name:   "context text lists unbacked skills",
			format: "text",
			data: &types.ContextAnalysisOutput{
				Score:    40,
				Summary:  "weak evidence",
				Coverage: 0.5,
				Skills: []types.SkillContext{
					{Skill: "Kubernetes", HasContext: false, Suggestion: "add a deployment example"},
				},
			},
			want: []string{"Coverage: 50%", "✗ Kubernetes", "add a deployment example"},
		},
		{
			name:    "unknown format rejected",
			format:  "yaml",
			data:    sampleTailorOutput(),
			wantErr: true,
		},
		{
			name:    "unregistered type without any-fallback rejected",
			format:  "text",
			data:    struct{}{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GlobalRegistry.Format(tt.format, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}
