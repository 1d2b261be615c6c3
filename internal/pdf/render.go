package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"tailorbase/internal/errors"
	"tailorbase/internal/types"

	"github.com/phpdave11/gofpdf"
)

// DefaultStyle is used when the user has not extracted a style sheet from a
// sample resume.
var DefaultStyle = types.StyleSheet{
	FontFamily:   "Helvetica",
	BaseFontSize: 10.5,
	HeadingSize:  14,
	MarginMM:     15,
	AccentColor:  "#1f3a5f",
	LineSpacing:  1.3,
	SectionCaps:  true,
}

// Render lays out structured resume content as a PDF using the given style
// sheet. pageSize is "A4" or "Letter".
func Render(content types.ResumeContent, style types.StyleSheet, pageSize string) ([]byte, error) {
	style = normalizeStyle(style)
	if pageSize != "A4" && pageSize != "Letter" {
		pageSize = "A4"
	}

	doc := gofpdf.New("P", "mm", pageSize, "")
	doc.SetTitle(content.FullName+" - Resume", true)
	doc.SetMargins(style.MarginMM, style.MarginMM, style.MarginMM)
	doc.SetAutoPageBreak(true, style.MarginMM)
	doc.AddPage()

	accentR, accentG, accentB := parseHexColor(style.AccentColor)
	lineHeight := style.BaseFontSize * 0.3528 * style.LineSpacing // pt to mm

	// Name and headline
	doc.SetTextColor(accentR, accentG, accentB)
	doc.SetFont(style.FontFamily, "B", style.HeadingSize+4)
	doc.Cell(0, lineHeight*2, content.FullName)
	doc.Ln(lineHeight * 2)

	doc.SetTextColor(60, 60, 60)
	if content.Headline != "" {
		doc.SetFont(style.FontFamily, "I", style.BaseFontSize+1)
		doc.Cell(0, lineHeight, content.Headline)
		doc.Ln(lineHeight * 1.5)
	}

	// Contact line
	contact := joinNonEmpty(" | ", content.Email, content.Phone, content.Location)
	if contact != "" {
		doc.SetFont(style.FontFamily, "", style.BaseFontSize-1)
		doc.Cell(0, lineHeight, contact)
		doc.Ln(lineHeight * 2)
	}

	doc.SetTextColor(20, 20, 20)
	if content.Summary != "" {
		writeSectionTitle(doc, style, accentR, accentG, accentB, "Summary", lineHeight)
		doc.SetFont(style.FontFamily, "", style.BaseFontSize)
		doc.MultiCell(0, lineHeight, content.Summary, "", "L", false)
		doc.Ln(lineHeight)
	}

	for _, section := range content.Sections {
		writeSectionTitle(doc, style, accentR, accentG, accentB, section.Title, lineHeight)
		doc.SetFont(style.FontFamily, "", style.BaseFontSize)
		for _, item := range section.Items {
			doc.MultiCell(0, lineHeight, "- "+item, "", "L", false)
		}
		doc.Ln(lineHeight)
	}

	if len(content.Skills) > 0 {
		writeSectionTitle(doc, style, accentR, accentG, accentB, "Skills", lineHeight)
		doc.SetFont(style.FontFamily, "", style.BaseFontSize)
		doc.MultiCell(0, lineHeight, strings.Join(content.Skills, ", "), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.NewIOError(errors.ErrCodePDFRenderFailed,
			"Failed to render PDF", err)
	}
	return buf.Bytes(), nil
}

func writeSectionTitle(doc *gofpdf.Fpdf, style types.StyleSheet, r, g, b int, title string, lineHeight float64) {
	if style.SectionCaps {
		title = strings.ToUpper(title)
	}
	doc.SetTextColor(r, g, b)
	doc.SetFont(style.FontFamily, "B", style.HeadingSize)
	doc.Cell(0, lineHeight*1.5, title)
	doc.Ln(lineHeight * 1.5)
	doc.SetTextColor(20, 20, 20)
}

// normalizeStyle falls back to defaults for any field the extracted style
// left empty or out of range.
func normalizeStyle(style types.StyleSheet) types.StyleSheet {
	if !isCoreFont(style.FontFamily) {
		style.FontFamily = DefaultStyle.FontFamily
	}
	if style.BaseFontSize < 6 || style.BaseFontSize > 24 {
		style.BaseFontSize = DefaultStyle.BaseFontSize
	}
	if style.HeadingSize < style.BaseFontSize || style.HeadingSize > 36 {
		style.HeadingSize = style.BaseFontSize + 3
	}
	if style.MarginMM < 5 || style.MarginMM > 40 {
		style.MarginMM = DefaultStyle.MarginMM
	}
	if style.LineSpacing < 1 || style.LineSpacing > 3 {
		style.LineSpacing = DefaultStyle.LineSpacing
	}
	if _, ok := hexColor(style.AccentColor); !ok {
		style.AccentColor = DefaultStyle.AccentColor
	}
	return style
}

// isCoreFont reports whether the family is one of the built-in PDF fonts
func isCoreFont(family string) bool {
	switch family {
	case "Helvetica", "Times", "Courier", "Arial":
		return true
	}
	return false
}

func hexColor(s string) (uint64, bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseHexColor(s string) (int, int, int) {
	v, ok := hexColor(s)
	if !ok {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// PageImageMIME guesses the MIME type of an uploaded template sample so the
// vision model receives the right content type.
func PageImageMIME(data []byte) string {
	switch {
	case len(data) > 3 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) > 2 && data[0] == 0xff && data[1] == 0xd8:
		return "image/jpeg"
	case len(data) > 4 && string(data[:5]) == "%PDF-":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ValidateUpload bounds the size of an uploaded document
func ValidateUpload(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Empty upload", nil)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return errors.NewValidationError(errors.ErrCodeFieldTooLong,
			fmt.Sprintf("Upload exceeds the %d byte limit", maxBytes), nil)
	}
	return nil
}
