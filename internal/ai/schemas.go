package ai

import (
	"fmt"

	"tailorbase/internal/config"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// generationConfig builds the structured-output configuration for an operation
func generationConfig(cfg *config.OperationAIConfig, operation string) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchemas[operation],
	}
	if *cfg.Temperature > 0 {
		gc.Temperature = cfg.Temperature
	}
	return gc
}

func stringArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// responseSchemas constrains Gemini's structured output per operation
var responseSchemas = map[string]*genai.Schema{
	config.OpTailor: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tailoredResume": {Type: genai.TypeString},
			"atsAnalysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"score":      {Type: genai.TypeInteger},
					"strengths":  {Type: genai.TypeString},
					"weaknesses": {Type: genai.TypeString},
				},
				Required: []string{"score", "strengths", "weaknesses"},
			},
			"changedSkills": stringArray(),
		},
		Required: []string{"tailoredResume", "atsAnalysis", "changedSkills"},
	},

	config.OpContext: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":   {Type: genai.TypeInteger},
			"summary": {Type: genai.TypeString},
			"skills": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"skill":            {Type: genai.TypeString},
						"hasContext":       {Type: genai.TypeBoolean},
						"evidence":         {Type: genai.TypeString},
						"suggestion":       {Type: genai.TypeString},
						"wellKnownCompany": {Type: genai.TypeBoolean},
					},
					Required: []string{"skill", "hasContext", "evidence", "suggestion", "wellKnownCompany"},
				},
			},
			"coverage": {Type: genai.TypeNumber},
		},
		Required: []string{"score", "summary", "skills", "coverage"},
	},

	config.OpUniqueness: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":   {Type: genai.TypeInteger},
			"summary": {Type: genai.TypeString},
			"differentiators": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"claim":         {Type: genai.TypeString},
						"rarity":        {Type: genai.TypeString},
						"hasComparable": {Type: genai.TypeBoolean},
						"evidence":      {Type: genai.TypeString},
					},
					Required: []string{"claim", "rarity", "hasComparable", "evidence"},
				},
			},
			"genericPhrases": stringArray(),
		},
		Required: []string{"score", "summary", "differentiators", "genericPhrases"},
	},

	config.OpImpact: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":   {Type: genai.TypeInteger},
			"summary": {Type: genai.TypeString},
			"statements": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"statement":   {Type: genai.TypeString},
						"quantified":  {Type: genai.TypeBoolean},
						"metric":      {Type: genai.TypeString},
						"improvement": {Type: genai.TypeString},
					},
					Required: []string{"statement", "quantified", "metric", "improvement"},
				},
			},
		},
		Required: []string{"score", "summary", "statements"},
	},

	config.OpCompany: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"companyName":    {Type: genai.TypeString},
			"wellKnown":      {Type: genai.TypeBoolean},
			"industry":       {Type: genai.TypeString},
			"sizeEstimate":   {Type: genai.TypeString},
			"culture":        {Type: genai.TypeString},
			"comparables":    stringArray(),
			"talkingPoints":  stringArray(),
			"recentSignals":  stringArray(),
			"fitAssessment":  {Type: genai.TypeString},
			"confidenceNote": {Type: genai.TypeString},
		},
		Required: []string{"companyName", "wellKnown", "industry", "sizeEstimate", "culture",
			"comparables", "talkingPoints", "recentSignals", "fitAssessment", "confidenceNote"},
	},

	config.OpSoftSkills: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"nextQuestion": {Type: genai.TypeString},
			"completed":    {Type: genai.TypeBoolean},
			"summary":      {Type: genai.TypeString},
			"scores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"dimension": {Type: genai.TypeString},
						"score":     {Type: genai.TypeInteger},
						"rationale": {Type: genai.TypeString},
					},
					Required: []string{"dimension", "score", "rationale"},
				},
			},
			"overallScore": {Type: genai.TypeInteger},
		},
		Required: []string{"nextQuestion", "completed", "summary", "scores", "overallScore"},
	},

	config.OpTemplate: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"style": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"fontFamily":   {Type: genai.TypeString},
					"baseFontSize": {Type: genai.TypeNumber},
					"headingSize":  {Type: genai.TypeNumber},
					"marginMM":     {Type: genai.TypeNumber},
					"accentColor":  {Type: genai.TypeString},
					"lineSpacing":  {Type: genai.TypeNumber},
					"sectionCaps":  {Type: genai.TypeBoolean},
				},
				Required: []string{"fontFamily", "baseFontSize", "headingSize", "marginMM",
					"accentColor", "lineSpacing", "sectionCaps"},
			},
			"notes": {Type: genai.TypeString},
		},
		Required: []string{"style", "notes"},
	},
}

// validationSchemas re-checks parsed responses before they are persisted.
// The generation schema cannot express value bounds, so scores and enums are
// enforced here.
var validationSchemas = map[string]string{
	config.OpTailor: `{
		"type": "object",
		"required": ["tailoredResume", "atsAnalysis"],
		"properties": {
			"tailoredResume": {"type": "string", "minLength": 1},
			"atsAnalysis": {
				"type": "object",
				"required": ["score"],
				"properties": {"score": {"type": "integer", "minimum": 0, "maximum": 100}}
			}
		}
	}`,
	config.OpContext: `{
		"type": "object",
		"required": ["score", "skills", "coverage"],
		"properties": {
			"score": {"type": "integer", "minimum": 0, "maximum": 100},
			"coverage": {"type": "number", "minimum": 0, "maximum": 1},
			"skills": {"type": "array", "items": {"type": "object", "required": ["skill", "hasContext"]}}
		}
	}`,
	config.OpUniqueness: `{
		"type": "object",
		"required": ["score", "differentiators"],
		"properties": {
			"score": {"type": "integer", "minimum": 0, "maximum": 100},
			"differentiators": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["claim", "rarity"],
					"properties": {"rarity": {"enum": ["common", "uncommon", "rare"]}}
				}
			}
		}
	}`,
	config.OpImpact: `{
		"type": "object",
		"required": ["score", "statements"],
		"properties": {"score": {"type": "integer", "minimum": 0, "maximum": 100}}
	}`,
	config.OpCompany: `{
		"type": "object",
		"required": ["companyName", "wellKnown", "industry"],
		"properties": {"companyName": {"type": "string", "minLength": 1}}
	}`,
	config.OpSoftSkills: `{
		"type": "object",
		"required": ["completed"],
		"properties": {
			"overallScore": {"type": "integer", "minimum": 0, "maximum": 100},
			"scores": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["dimension", "score"],
					"properties": {"score": {"type": "integer", "minimum": 0, "maximum": 100}}
				}
			}
		}
	}`,
	config.OpTemplate: `{
		"type": "object",
		"required": ["style"],
		"properties": {
			"style": {
				"type": "object",
				"required": ["fontFamily", "baseFontSize", "marginMM"],
				"properties": {
					"baseFontSize": {"type": "number", "minimum": 6, "maximum": 24},
					"marginMM": {"type": "number", "minimum": 5, "maximum": 40},
					"accentColor": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"}
				}
			}
		}
	}`,
}

// validateResponse checks a raw model response against the operation's
// validation schema.
func validateResponse(operation string, raw []byte) error {
	schema, ok := validationSchemas[operation]
	if !ok {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("response validation failed: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("response violates schema: %v", result.Errors())
	}
	return nil
}
