package document

import (
	"regexp"
	"strings"
)

// aadhaarRule extracts fields from Aadhaar card OCR text. Aadhaar cards
// print the holder name in title case directly above the date of birth
// line, surrounded by a lot of bilingual boilerplate.
type aadhaarRule struct{}

var aadhaarBoilerplate = []string{
	"government", "india", "aadhaar", "male", "female", "address", "date", "birth",
}

var (
	aadhaarDateTokenRe = regexp.MustCompile(`(?i)\bdob\b|date\s+of\s+birth|\d{2}[-/]\d{2}[-/]\d{4}`)
	titleCaseNameRe    = regexp.MustCompile(`[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}`)
	aadhaarNumberRe    = regexp.MustCompile(`\d{4}[\s-]?\d{4}[\s-]?\d{4}`)
	twelveDigitsRe     = regexp.MustCompile(`^\d{12}$`)
)

func (aadhaarRule) ExtractName(text string) (string, bool) {
	lines := splitLines(text)

	// First rule: the name immediately precedes the DOB/date token, either
	// on the same line or on the previous non-empty line.
	for i, line := range lines {
		loc := aadhaarDateTokenRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if name, ok := titleCaseName(line[:loc[0]]); ok {
			return name, true
		}
		for j := i - 1; j >= 0; j-- {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if name, ok := titleCaseName(lines[j]); ok {
				return name, true
			}
			break
		}
	}

	// Fallback: first title-case two/three-word sequence that is not card
	// boilerplate.
	for _, candidate := range titleCaseNameRe.FindAllString(text, -1) {
		if !containsBoilerplate(candidate, aadhaarBoilerplate) {
			return candidate, true
		}
	}
	return "", false
}

func titleCaseName(s string) (string, bool) {
	candidate := titleCaseNameRe.FindString(s)
	if candidate == "" || containsBoilerplate(candidate, aadhaarBoilerplate) {
		return "", false
	}
	return candidate, true
}

func (aadhaarRule) ExtractIDNumber(text string) (string, bool) {
	match := aadhaarNumberRe.FindString(text)
	if match == "" {
		return "", false
	}
	return stripSeparators(match), true
}

func (aadhaarRule) ValidateIDNumber(number string) bool {
	return twelveDigitsRe.MatchString(number)
}

func (aadhaarRule) ExpectedFormat() string {
	return "12 digits"
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func stripSeparators(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(s)
}
