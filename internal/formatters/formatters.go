// Package formatters renders CLI command outputs in the supported formats.
package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"tailorbase/internal/types"
)

// Formatter renders a value of a particular output type in one format.
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry maps format name -> data type -> formatter.
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter
}

// NewFormatterRegistry creates a registry with all built-in formatters.
func NewFormatterRegistry() *FormatterRegistry {
	r := &FormatterRegistry{formatters: make(map[string]map[string]Formatter)}

	r.Register("json", &JSONFormatter{})

	r.Register("text", &TailorTextFormatter{})
	r.Register("text", &ContextTextFormatter{})
	r.Register("text", &ImpactTextFormatter{})

	r.Register("markdown", &TailorMarkdownFormatter{})
	r.Register("markdown", &ContextMarkdownFormatter{})
	r.Register("markdown", &ImpactMarkdownFormatter{})

	return r
}

// Register adds a formatter under the given format name.
func (r *FormatterRegistry) Register(format string, f Formatter) {
	byType, ok := r.formatters[format]
	if !ok {
		byType = make(map[string]Formatter)
		r.formatters[format] = byType
	}
	byType[f.SupportedType()] = f
}

// Format renders data using the formatter registered for its type, falling
// back to the format's "any" formatter when no type-specific one exists.
func (r *FormatterRegistry) Format(format string, data any) (string, error) {
	byType, ok := r.formatters[format]
	if !ok {
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if f, ok := byType[dataType(data)]; ok {
		return f.Format(data)
	}
	if f, ok := byType["any"]; ok {
		return f.Format(data)
	}
	return "", fmt.Errorf("no %s formatter for type %s", format, dataType(data))
}

func dataType(data any) string {
	switch data.(type) {
	case *types.TailorResumeOutput:
		return "tailor"
	case *types.ContextAnalysisOutput:
		return "context"
	case *types.ImpactAnalysisOutput:
		return "impact"
	default:
		return "unknown"
	}
}

// GlobalRegistry is the registry used by the CLI output handler.
var GlobalRegistry = NewFormatterRegistry()

// JSONFormatter marshals any output type as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) SupportedType() string { return "any" }

func (f *JSONFormatter) Format(data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(out), nil
}

// TailorTextFormatter renders tailoring results as plain text.
type TailorTextFormatter struct{}

func (f *TailorTextFormatter) SupportedType() string { return "tailor" }

func (f *TailorTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.TailorResumeOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("=== Tailored Resume ===\n\n")
	b.WriteString(result.TailoredResume)
	b.WriteString("\n\n=== ATS Analysis ===\n")
	fmt.Fprintf(&b, "Score: %d/100\n", result.ATSAnalysis.Score)
	fmt.Fprintf(&b, "Strengths: %s\n", result.ATSAnalysis.Strengths)
	fmt.Fprintf(&b, "Weaknesses: %s\n", result.ATSAnalysis.Weaknesses)
	if len(result.ChangedSkills) > 0 {
		fmt.Fprintf(&b, "\nChanged skills: %s\n", strings.Join(result.ChangedSkills, ", "))
	}
	return b.String(), nil
}

// TailorMarkdownFormatter renders tailoring results as Markdown.
type TailorMarkdownFormatter struct{}

func (f *TailorMarkdownFormatter) SupportedType() string { return "tailor" }

func (f *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.TailorResumeOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("# Tailored Resume\n\n")
	b.WriteString(result.TailoredResume)
	b.WriteString("\n\n## ATS Analysis\n\n")
	fmt.Fprintf(&b, "**Score:** %d/100\n\n", result.ATSAnalysis.Score)
	fmt.Fprintf(&b, "**Strengths:** %s\n\n", result.ATSAnalysis.Strengths)
	fmt.Fprintf(&b, "**Weaknesses:** %s\n", result.ATSAnalysis.Weaknesses)
	if len(result.ChangedSkills) > 0 {
		b.WriteString("\n## Changed Skills\n\n")
		for _, skill := range result.ChangedSkills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	return b.String(), nil
}

// ContextTextFormatter renders context analysis results as plain text.
type ContextTextFormatter struct{}

func (f *ContextTextFormatter) SupportedType() string { return "context" }

func (f *ContextTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.ContextAnalysisOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.ContextAnalysisOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("=== Context Analysis ===\n\n")
	fmt.Fprintf(&b, "Score: %d/100\n", result.Score)
	fmt.Fprintf(&b, "Coverage: %.0f%%\n", result.Coverage*100)
	fmt.Fprintf(&b, "Summary: %s\n", result.Summary)
	if len(result.Skills) > 0 {
		b.WriteString("\nSkills:\n")
		for _, s := range result.Skills {
			marker := "✗"
			if s.HasContext {
				marker = "✓"
			}
			fmt.Fprintf(&b, "  %s %s\n", marker, s.Skill)
			if s.Evidence != "" {
				fmt.Fprintf(&b, "      Evidence: %s\n", s.Evidence)
			}
			if s.Suggestion != "" {
				fmt.Fprintf(&b, "      Suggestion: %s\n", s.Suggestion)
			}
		}
	}
	return b.String(), nil
}

// ContextMarkdownFormatter renders context analysis results as Markdown.
type ContextMarkdownFormatter struct{}

func (f *ContextMarkdownFormatter) SupportedType() string { return "context" }

func (f *ContextMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.ContextAnalysisOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.ContextAnalysisOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("# Context Analysis\n\n")
	fmt.Fprintf(&b, "**Score:** %d/100  \n", result.Score)
	fmt.Fprintf(&b, "**Coverage:** %.0f%%\n\n", result.Coverage*100)
	fmt.Fprintf(&b, "%s\n", result.Summary)
	if len(result.Skills) > 0 {
		b.WriteString("\n## Skills\n\n")
		b.WriteString("| Skill | Backed | Evidence | Suggestion |\n")
		b.WriteString("|-------|--------|----------|------------|\n")
		for _, s := range result.Skills {
			backed := "no"
			if s.HasContext {
				backed = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				s.Skill, backed, s.Evidence, s.Suggestion)
		}
	}
	return b.String(), nil
}

// ImpactTextFormatter renders impact analysis results as plain text.
type ImpactTextFormatter struct{}

func (f *ImpactTextFormatter) SupportedType() string { return "impact" }

func (f *ImpactTextFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.ImpactAnalysisOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.ImpactAnalysisOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("=== Impact Analysis ===\n\n")
	fmt.Fprintf(&b, "Score: %d/100\n", result.Score)
	fmt.Fprintf(&b, "Summary: %s\n", result.Summary)
	if len(result.Statements) > 0 {
		b.WriteString("\nStatements:\n")
		for _, st := range result.Statements {
			fmt.Fprintf(&b, "  - %s\n", st.Statement)
			if st.Quantified {
				fmt.Fprintf(&b, "      Metric: %s\n", st.Metric)
			} else if st.Improvement != "" {
				fmt.Fprintf(&b, "      Improvement: %s\n", st.Improvement)
			}
		}
	}
	return b.String(), nil
}

// ImpactMarkdownFormatter renders impact analysis results as Markdown.
type ImpactMarkdownFormatter struct{}

func (f *ImpactMarkdownFormatter) SupportedType() string { return "impact" }

func (f *ImpactMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(*types.ImpactAnalysisOutput)
	if !ok {
		return "", fmt.Errorf("expected *types.ImpactAnalysisOutput, got %T", data)
	}

	var b strings.Builder
	b.WriteString("# Impact Analysis\n\n")
	fmt.Fprintf(&b, "**Score:** %d/100\n\n", result.Score)
	fmt.Fprintf(&b, "%s\n", result.Summary)
	if len(result.Statements) > 0 {
		b.WriteString("\n## Statements\n\n")
		for _, st := range result.Statements {
			fmt.Fprintf(&b, "- %s", st.Statement)
			if st.Quantified {
				fmt.Fprintf(&b, " *(metric: %s)*", st.Metric)
			} else if st.Improvement != "" {
				fmt.Fprintf(&b, " *(suggested: %s)*", st.Improvement)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
