// Package extractor pulls the text layer out of receipt PDFs so the
// parser can work on it. Scanned image-only PDFs have no text layer;
// those come back as an error and are left for manual entry.
package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF file and returns its text content with page
// texts joined by blank lines. Row-based extraction is tried first
// because it preserves receipt line structure; plain-text extraction is
// the fallback for PDFs whose layout the row reader cannot handle.
func ExtractText(filePath string) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF extraction crashed: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	if reader.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	if text := extractByRow(reader); isReadableText(text) {
		return text, nil
	}

	if text := extractPlainText(reader); isReadableText(text) {
		return text, nil
	}

	return "", fmt.Errorf("no readable text layer found; the PDF is likely image-based")
}

// extractByRow walks each page row by row, top to bottom.
func extractByRow(reader *pdf.Reader) string {
	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(pages, "\n\n")
}

// extractPlainText uses the whole-document extraction path.
func extractPlainText(reader *pdf.Reader) string {
	r, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// isReadableText guards against garbage from identity-encoded fonts.
// Receipts are short, so the threshold is low, and Japanese characters
// count as readable alongside ASCII.
func isReadableText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 {
		return false
	}
	return readableRatio(trimmed) > 0.6
}

// readableRatio returns the fraction of characters that are letters,
// digits, whitespace, kana/kanji, or common receipt punctuation.
func readableRatio(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			readable++
		case unicode.IsSpace(r):
			readable++
		case unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han):
			readable++
		case strings.ContainsRune(".,:：/¥￥円-()（）", r):
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
