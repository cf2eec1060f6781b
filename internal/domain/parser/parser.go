// Package parser extracts structured receipt data from OCR text.
//
// Japanese receipts are the primary target: amounts appear in yen
// notation (¥1,200 / 合計: 1,500円 / 1,200円), dates in year-first
// (2024年1月15日, 2024/01/15), month-first (01/15/2024), or bare 月日
// forms. Extraction is best effort: a field that cannot be recognized
// is left as its zero value, and the parse as a whole never fails.
//
// Example usage:
//
//	p := parser.New()
//	receipt := p.Parse(ocrText)
//	if receipt.HasAmount() {
//		// use receipt.Amount
//	}
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedReceipt is the structured result of parsing one OCR text.
// RawText is always set; every other field is independently optional
// and holds its zero value when extraction found nothing.
type ParsedReceipt struct {
	Amount      float64   `json:"amount,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	Description string    `json:"description,omitempty"`
	RawText     string    `json:"raw_text"`
}

// HasAmount reports whether an amount was extracted.
func (r *ParsedReceipt) HasAmount() bool { return r.Amount > 0 }

// HasDate reports whether a date was extracted.
func (r *ParsedReceipt) HasDate() bool { return !r.Date.IsZero() }

// Parser converts unstructured OCR text into ParsedReceipt records.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	now func() time.Time // bare 月日 dates assume the current year
}

// New creates a parser using the system clock.
func New() *Parser {
	return &Parser{now: time.Now}
}

// Parse extracts amount, date, vendor and description from the given
// OCR text. Each extractor runs independently; one failing to match
// leaves its field empty without affecting the others. Blank input
// short-circuits to a record carrying only the raw text.
func (p *Parser) Parse(text string) *ParsedReceipt {
	receipt := &ParsedReceipt{RawText: text}
	if strings.TrimSpace(text) == "" {
		return receipt
	}

	receipt.Amount = extractAmount(text)
	receipt.Date = p.extractDate(text)
	receipt.Vendor = extractVendor(text)
	receipt.Description = extractDescription(text)

	return receipt
}

// Amount pattern families: yen-prefixed numbers, labelled total fields,
// and bare comma-grouped numbers followed by 円.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[¥￥]\s*([0-9][0-9,]*)`),
	regexp.MustCompile(`(?:金額|合計|小計)[:：]?\s*[¥￥]?\s*([0-9][0-9,]*)`),
	regexp.MustCompile(`([0-9][0-9,]*)\s*円`),
}

// extractAmount collects every candidate across all pattern families
// and returns the largest. Subtotals and line items on a receipt are
// smaller than the total, so the maximum is taken as the total.
// Returns 0 when no positive amount was found.
func extractAmount(text string) float64 {
	var best float64
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || value <= 0 {
				continue
			}
			if value > best {
				best = value
			}
		}
	}
	return best
}

// Date pattern families in strict priority order. The first family
// producing a structurally valid calendar date wins; an invalid capture
// (month 13, day 32) falls through to the next family.
var dateFamilies = []struct {
	re        *regexp.Regexp
	yearFirst bool
	thisYear  bool // no year in the text, assume the current one
}{
	{re: regexp.MustCompile(`(\d{4})[/\-年](\d{1,2})[/\-月](\d{1,2})日?`), yearFirst: true},
	{re: regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)},
	{re: regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`), thisYear: true},
}

func (p *Parser) extractDate(text string) time.Time {
	for _, family := range dateFamilies {
		m := family.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var year, month, day int
		switch {
		case family.thisYear:
			year = p.now().Year()
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
		case family.yearFirst:
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		default:
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}

		if date, ok := makeDate(year, month, day); ok {
			return date
		}
	}
	return time.Time{}
}

// makeDate builds a calendar date and rejects captures that only look
// like one. time.Date normalizes overflow (month 13 becomes January),
// so a round-trip comparison detects invalid input.
func makeDate(year, month, day int) (time.Time, bool) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// priceLineRe matches lines made up solely of digits, whitespace,
// separators and currency markers, i.e. a price line rather than a name.
var priceLineRe = regexp.MustCompile(`^[0-9\s,，.\-¥￥円]+$`)

func looksLikePrice(line string) bool {
	return priceLineRe.MatchString(line)
}

// Vendor fallback patterns: explicit store label, corporate suffix,
// retail category keyword.
var vendorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`店舗[:：]\s*(\S.*)`),
	regexp.MustCompile(`(?m)^(.*(?:株式会社|有限会社).*)$`),
	regexp.MustCompile(`(?m)^(.*(?:コンビニ|スーパー|ストア).*)$`),
}

// extractVendor picks the merchant name. The first non-blank line wins
// unless it looks like a price; otherwise the fallback patterns are
// tried in order.
func extractVendor(text string) string {
	lines := nonBlankLines(text)
	if len(lines) > 0 && !looksLikePrice(lines[0]) {
		return lines[0]
	}
	for _, re := range vendorPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var currencyMarkRe = regexp.MustCompile(`[¥￥円]`)

// extractDescription scans lines 2-5 for the first line that is neither
// a price line nor carries a currency marker.
func extractDescription(text string) string {
	lines := nonBlankLines(text)
	limit := min(len(lines), 5)
	for i := 1; i < limit; i++ {
		if looksLikePrice(lines[i]) || currencyMarkRe.MatchString(lines[i]) {
			continue
		}
		return lines[i]
	}
	return ""
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
