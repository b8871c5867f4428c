package document

import (
	"regexp"
)

// drivingLicenceRule extracts fields from driving licence OCR text.
// Licence number formats are jurisdiction specific, so no strict format
// validation is applied to the extracted number.
type drivingLicenceRule struct{}

var dlBoilerplate = []string{
	"driving", "licence", "license", "transport", "authority",
	"union", "india", "motor", "vehicle", "department", "valid",
}

var (
	dlNameLabelRe = regexp.MustCompile(`(?im)\bname\b\s*[:\-]\s*([A-Za-z][A-Za-z. ]*[A-Za-z])`)
	dlAllCapsRe   = regexp.MustCompile(`[A-Z]{2,}(?: [A-Z]{2,}){1,2}`)

	// state-code style formatted groups, e.g. "MH12 2011 0062821"
	dlFormattedNumberRe = regexp.MustCompile(`[A-Z]{2}[-\s]?\d{2}[-\s]?\d{4}[-\s]?\d{7}`)
	dlRawDigitsRe       = regexp.MustCompile(`\d{8,9}`)
	dlLabelNumberRe     = regexp.MustCompile(`(?i)(?:dl|licen[cs]e)\s*(?:no|number)?\.?\s*[:\-]?\s*([A-Z0-9-]{6,16})`)
)

func (drivingLicenceRule) ExtractName(text string) (string, bool) {
	if m := dlNameLabelRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	// fallback: a pair or triple of all-caps tokens, skipping headers like
	// "DRIVING LICENCE" or "UNION OF INDIA"
	for _, candidate := range dlAllCapsRe.FindAllString(text, -1) {
		if !containsBoilerplate(candidate, dlBoilerplate) {
			return candidate, true
		}
	}
	return "", false
}

func (drivingLicenceRule) ExtractIDNumber(text string) (string, bool) {
	if match := dlFormattedNumberRe.FindString(text); match != "" {
		return stripSeparators(match), true
	}
	if match := dlRawDigitsRe.FindString(text); match != "" {
		return match, true
	}
	if m := dlLabelNumberRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func (drivingLicenceRule) ValidateIDNumber(string) bool {
	return true
}

func (drivingLicenceRule) ExpectedFormat() string {
	return ""
}
