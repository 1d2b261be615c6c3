package pdf

import (
	"bytes"
	"strings"
	"testing"

	"tailorbase/internal/errors"
	"tailorbase/internal/types"
)

func sampleContent() types.ResumeContent {
	return types.ResumeContent{
		FullName: "Ada Example",
		Headline: "Platform Engineer",
		Email:    "ada@example.com",
		Location: "Berlin",
		Summary:  "Engineer with a decade of infrastructure work.",
		Sections: []types.ResumeSection{
			{Title: "Experience", Items: []string{"Engineer, Acme (2021 - present): ran the platform"}},
		},
		Skills: []string{"Go", "Kubernetes"},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(sampleContent(), DefaultStyle, "A4")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
	if len(data) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestRenderFallsBackOnBadStyle(t *testing.T) {
	bad := types.StyleSheet{
		FontFamily:   "Comic Sans",
		BaseFontSize: 200,
		HeadingSize:  1,
		MarginMM:     400,
		AccentColor:  "blue",
		LineSpacing:  9,
	}

	data, err := Render(sampleContent(), bad, "tabloid")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestNormalizeStyle(t *testing.T) {
	tests := []struct {
		name  string
		in    types.StyleSheet
		check func(t *testing.T, out types.StyleSheet)
	}{
		{
			name: "valid style untouched",
			in:   types.StyleSheet{FontFamily: "Times", BaseFontSize: 11, HeadingSize: 14, MarginMM: 20, AccentColor: "#ff0000", LineSpacing: 1.5},
			check: func(t *testing.T, out types.StyleSheet) {
				if out.FontFamily != "Times" || out.BaseFontSize != 11 || out.AccentColor != "#ff0000" {
					t.Errorf("valid style was modified: %+v", out)
				}
			},
		},
		{
			name: "unknown font replaced",
			in:   types.StyleSheet{FontFamily: "Papyrus"},
			check: func(t *testing.T, out types.StyleSheet) {
				if out.FontFamily != DefaultStyle.FontFamily {
					t.Errorf("FontFamily = %q", out.FontFamily)
				}
			},
		},
		{
			name: "heading below base lifted",
			in:   types.StyleSheet{FontFamily: "Helvetica", BaseFontSize: 12, HeadingSize: 8, MarginMM: 15, LineSpacing: 1.2},
			check: func(t *testing.T, out types.StyleSheet) {
				if out.HeadingSize != 15 {
					t.Errorf("HeadingSize = %f, want 15", out.HeadingSize)
				}
			},
		},
		{
			name: "bad accent color replaced",
			in:   types.StyleSheet{AccentColor: "#zzz"},
			check: func(t *testing.T, out types.StyleSheet) {
				if out.AccentColor != DefaultStyle.AccentColor {
					t.Errorf("AccentColor = %q", out.AccentColor)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, normalizeStyle(tt.in))
		})
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#1a73e8")
	if r != 0x1a || g != 0x73 || b != 0xe8 {
		t.Errorf("parseHexColor = (%d, %d, %d)", r, g, b)
	}
	if r, g, b := parseHexColor("nope"); r != 0 || g != 0 || b != 0 {
		t.Errorf("invalid color should parse to black, got (%d, %d, %d)", r, g, b)
	}
}

func TestPageImageMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d}, "image/png"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
		{"pdf", []byte("%PDF-1.7 rest"), "application/pdf"},
		{"unknown", []byte("hello"), "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageImageMIME(tt.data); got != tt.want {
				t.Errorf("PageImageMIME = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUpload(t *testing.T) {
	if err := ValidateUpload(nil, 100); err == nil {
		t.Error("empty upload should fail")
	}
	if err := ValidateUpload(make([]byte, 200), 100); err == nil {
		t.Error("oversized upload should fail")
	}
	if err := ValidateUpload(make([]byte, 50), 100); err != nil {
		t.Errorf("valid upload rejected: %v", err)
	}
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	_, err := ExtractText([]byte("not a pdf at all"), 0)
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
	if errors.ErrorCode(err) != errors.ErrCodePDFParseFailed {
		t.Errorf("error code = %q, want %q", errors.ErrorCode(err), errors.ErrCodePDFParseFailed)
	}
}

func TestExtractTextRoundTrip(t *testing.T) {
	rendered, err := Render(sampleContent(), DefaultStyle, "A4")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	text, err := ExtractText(rendered, 0)
	if err != nil {
		t.Fatalf("ExtractText returned error: %v", err)
	}
	for _, want := range []string{"Ada Example", "Platform Engineer"} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q", want)
		}
	}
}
