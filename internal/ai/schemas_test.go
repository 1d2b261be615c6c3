package ai

import (
	"testing"

	"tailorbase/internal/config"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		raw       string
		wantErr   bool
	}{
		{
			name:      "valid tailor response",
			operation: config.OpTailor,
			raw:       `{"tailoredResume": "text", "atsAnalysis": {"score": 85, "strengths": "s", "weaknesses": "w"}, "changedSkills": []}`,
			wantErr:   false,
		},
		{
			name:      "tailor score out of range",
			operation: config.OpTailor,
			raw:       `{"tailoredResume": "text", "atsAnalysis": {"score": 140}}`,
			wantErr:   true,
		},
		{
			name:      "tailor empty resume",
			operation: config.OpTailor,
			raw:       `{"tailoredResume": "", "atsAnalysis": {"score": 85}}`,
			wantErr:   true,
		},
		{
			name:      "valid context response",
			operation: config.OpContext,
			raw:       `{"score": 60, "coverage": 0.5, "skills": [{"skill": "Go", "hasContext": true}]}`,
			wantErr:   false,
		},
		{
			name:      "context coverage above one",
			operation: config.OpContext,
			raw:       `{"score": 60, "coverage": 1.5, "skills": []}`,
			wantErr:   true,
		},
		{
			name:      "valid uniqueness response",
			operation: config.OpUniqueness,
			raw:       `{"score": 70, "differentiators": [{"claim": "c", "rarity": "rare"}]}`,
			wantErr:   false,
		},
		{
			name:      "uniqueness bad rarity",
			operation: config.OpUniqueness,
			raw:       `{"score": 70, "differentiators": [{"claim": "c", "rarity": "legendary"}]}`,
			wantErr:   true,
		},
		{
			name:      "valid impact response",
			operation: config.OpImpact,
			raw:       `{"score": 40, "statements": []}`,
			wantErr:   false,
		},
		{
			name:      "impact missing score",
			operation: config.OpImpact,
			raw:       `{"statements": []}`,
			wantErr:   true,
		},
		{
			name:      "valid company response",
			operation: config.OpCompany,
			raw:       `{"companyName": "Acme", "wellKnown": false, "industry": "manufacturing"}`,
			wantErr:   false,
		},
		{
			name:      "company empty name",
			operation: config.OpCompany,
			raw:       `{"companyName": "", "wellKnown": false, "industry": "manufacturing"}`,
			wantErr:   true,
		},
		{
			name:      "valid soft skills turn",
			operation: config.OpSoftSkills,
			raw:       `{"completed": false, "nextQuestion": "Tell me about a time..."}`,
			wantErr:   false,
		},
		{
			name:      "soft skills score out of range",
			operation: config.OpSoftSkills,
			raw:       `{"completed": true, "scores": [{"dimension": "leadership", "score": 101}]}`,
			wantErr:   true,
		},
		{
			name:      "valid template response",
			operation: config.OpTemplate,
			raw:       `{"style": {"fontFamily": "Helvetica", "baseFontSize": 10.5, "marginMM": 15, "accentColor": "#1a73e8"}}`,
			wantErr:   false,
		},
		{
			name:      "template bad accent color",
			operation: config.OpTemplate,
			raw:       `{"style": {"fontFamily": "Helvetica", "baseFontSize": 10.5, "marginMM": 15, "accentColor": "blue"}}`,
			wantErr:   true,
		},
		{
			name:      "template margin out of range",
			operation: config.OpTemplate,
			raw:       `{"style": {"fontFamily": "Helvetica", "baseFontSize": 10.5, "marginMM": 90}}`,
			wantErr:   true,
		},
		{
			name:      "unknown operation passes through",
			operation: "unknown",
			raw:       `{"anything": true}`,
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.operation, []byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("validateResponse(%s) error = %v, wantErr %v", tt.operation, err, tt.wantErr)
			}
		})
	}
}

func TestResponseSchemasCoverAllOperations(t *testing.T) {
	for _, operation := range config.Operations() {
		if responseSchemas[operation] == nil {
			t.Errorf("no response schema registered for operation %q", operation)
		}
		if validationSchemas[operation] == "" {
			t.Errorf("no validation schema registered for operation %q", operation)
		}
	}
}

func TestPromptDefaultsCoverAllOperations(t *testing.T) {
	for _, operation := range config.Operations() {
		if defaultSystemPrompts[operation] == "" {
			t.Errorf("no system prompt for operation %q", operation)
		}
		if defaultUserPrompts[operation] == "" {
			t.Errorf("no user prompt for operation %q", operation)
		}
	}
}
