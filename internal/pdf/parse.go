// Package pdf converts between uploaded PDF documents and the structured
// resume form: plain-text extraction on the way in, styled rendering on the
// way out.
package pdf

import (
	"bytes"
	"strings"

	"tailorbase/internal/errors"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls the plain text out of an uploaded PDF. maxPages of 0
// means no page limit.
func ExtractText(data []byte, maxPages int) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodePDFParseFailed,
			"Failed to read PDF document", err)
	}

	if maxPages > 0 && reader.NumPage() > maxPages {
		return "", errors.NewValidationError(errors.ErrCodePDFParseFailed,
			"PDF has too many pages", nil)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodePDFParseFailed,
				"Failed to extract text from PDF page", err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	extracted := strings.TrimSpace(b.String())
	if extracted == "" {
		return "", errors.NewValidationError(errors.ErrCodePDFParseFailed,
			"PDF contains no extractable text", nil)
	}
	return extracted, nil
}
