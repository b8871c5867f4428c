package document

import (
	"regexp"
	"strings"
)

// panRule extracts fields from Indian PAN card OCR text. PAN cards label
// the holder name explicitly, followed by the father's name and the date
// of birth.
type panRule struct{}

var (
	// capture everything between the "name" label and the next label
	// (father / date / a date literal) or the end of text
	panNameRe   = regexp.MustCompile(`(?is)\bname\b[:\s]*(.+?)(?:\bfather\b|\bdate\b|\d{2}[-/]\d{2}[-/]\d{4}|$)`)
	panNumberRe = regexp.MustCompile(`[A-Z]{5}\d{4}[A-Z]`)
	panFormatRe = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	alphaWordRe = regexp.MustCompile(`^[A-Za-z]+$`)
)

// honorifics stripped from the front of PAN names; OCR tends to glue them
// onto the first line of the name block.
var panTitleWords = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"shri": true, "smt": true, "sri": true,
}

func (panRule) ExtractName(text string) (string, bool) {
	m := panNameRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	// collapse line breaks and runs of whitespace
	tokens := strings.Fields(m[1])

	// strip the leading run of honorifics and short fragments
	start := 0
	for start < len(tokens) {
		token := strings.ToLower(strings.Trim(tokens[start], "."))
		if panTitleWords[token] || len(token) <= 2 {
			start++
			continue
		}
		break
	}

	var kept []string
	for _, token := range tokens[start:] {
		token = strings.Trim(token, ".,:")
		if len(token) >= 3 && alphaWordRe.MatchString(token) {
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

func (panRule) ExtractIDNumber(text string) (string, bool) {
	match := panNumberRe.FindString(text)
	return match, match != ""
}

func (panRule) ValidateIDNumber(number string) bool {
	return panFormatRe.MatchString(number)
}

func (panRule) ExpectedFormat() string {
	return "5 letters, 4 digits, 1 letter"
}
