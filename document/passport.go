package document

import (
	"regexp"
	"strings"
)

// passportRule extracts fields from the printed data page of a passport.
// Passports split the holder name over separate "given name(s)" and
// "surname" fields.
type passportRule struct{}

var (
	passportGivenNameRe   = regexp.MustCompile(`(?im)given\s*name(?:\(s\)|s)?\s*[:\-]?\s*([A-Za-z][A-Za-z ]*[A-Za-z])`)
	passportSurnameRe     = regexp.MustCompile(`(?im)surname\s*[:\-]?\s*([A-Za-z][A-Za-z ]*[A-Za-z])`)
	passportLabelNumberRe = regexp.MustCompile(`(?i)passport\s*(?:no|number)\.?\s*[:\-]?\s*([A-Z0-9]{6,9})`)
	passportNumberRe      = regexp.MustCompile(`[A-Z]\d{7,8}`)
	passportFormatRe      = regexp.MustCompile(`^[A-Z]\d{7,8}$`)
)

func (passportRule) ExtractName(text string) (string, bool) {
	var given, surname string
	if m := passportGivenNameRe.FindStringSubmatch(text); m != nil {
		given = strings.TrimSpace(m[1])
	}
	if m := passportSurnameRe.FindStringSubmatch(text); m != nil {
		surname = strings.TrimSpace(m[1])
	}

	switch {
	case given != "" && surname != "":
		return given + " " + surname, true
	case given != "":
		return given, true
	case surname != "":
		return surname, true
	default:
		return "", false
	}
}

func (passportRule) ExtractIDNumber(text string) (string, bool) {
	if m := passportLabelNumberRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if match := passportNumberRe.FindString(text); match != "" {
		return match, true
	}
	return "", false
}

func (passportRule) ValidateIDNumber(number string) bool {
	return passportFormatRe.MatchString(number)
}

func (passportRule) ExpectedFormat() string {
	return "1 letter followed by 7-8 digits"
}
