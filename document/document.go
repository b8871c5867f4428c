// Package document recovers identity fields from the raw OCR text of a
// government ID. Extraction is heuristic and advisory: on total failure it
// returns a result with both fields absent rather than an error.
package document

import (
	"fmt"
	"strings"
)

// DocumentType is the closed set of supported ID documents. It selects
// which extraction rule set and which format validation apply.
type DocumentType int

const (
	Aadhaar DocumentType = iota
	Pan
	Passport
	DriversLicense
)

func (t DocumentType) String() string {
	switch t {
	case Aadhaar:
		return "aadhaar"
	case Pan:
		return "pan"
	case Passport:
		return "passport"
	case DriversLicense:
		return "drivers_license"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseDocumentType maps the declared document type from the capture
// surface onto the closed enum.
func ParseDocumentType(s string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aadhaar":
		return Aadhaar, nil
	case "pan":
		return Pan, nil
	case "passport":
		return Passport, nil
	case "drivers_license", "driving_licence", "drivers_licence", "driving_license":
		return DriversLicense, nil
	default:
		return 0, fmt.Errorf("unsupported document type: %q", s)
	}
}

// ExtractionResult holds whatever could be recovered from one document
// image. Empty Name/IDNumber means the field could not be extracted, which
// is a valid state: OCR is advisory, not authoritative.
type ExtractionResult struct {
	RawText       string
	Name          string
	IDNumber      string
	FormatWarning string
}

// ExtractionRule is implemented once per document type. The first
// successful rule inside each method wins; there is no backtracking
// between name and number extraction.
type ExtractionRule interface {
	// ExtractName returns a candidate holder name, if one can be found.
	ExtractName(text string) (string, bool)

	// ExtractIDNumber returns a candidate document number, if one can be
	// found.
	ExtractIDNumber(text string) (string, bool)

	// ValidateIDNumber reports whether an extracted number matches the
	// document type's expected format.
	ValidateIDNumber(number string) bool

	// ExpectedFormat describes the expected number format for warning
	// messages. Empty means the type has no strict format (jurisdiction
	// specific numbers).
	ExpectedFormat() string
}

func ruleFor(t DocumentType) ExtractionRule {
	switch t {
	case Aadhaar:
		return aadhaarRule{}
	case Pan:
		return panRule{}
	case Passport:
		return passportRule{}
	case DriversLicense:
		return drivingLicenceRule{}
	default:
		return drivingLicenceRule{}
	}
}

// Extract applies the type-specific rule set to raw OCR text. It is a pure
// function: identical input always yields an identical result, and it never
// fails.
func Extract(rawText string, docType DocumentType) ExtractionResult {
	rule := ruleFor(docType)
	result := ExtractionResult{RawText: rawText}

	if name, ok := rule.ExtractName(rawText); ok {
		result.Name = name
	}

	if number, ok := rule.ExtractIDNumber(rawText); ok {
		result.IDNumber = number
		if format := rule.ExpectedFormat(); format != "" && !rule.ValidateIDNumber(number) {
			result.FormatWarning = fmt.Sprintf(
				"extracted id number %q does not match the expected %s format (%s)",
				number, docType, format)
		}
	}

	return result
}

// containsBoilerplate reports whether any token of the candidate appears in
// the blocklist. Used to reject card boilerplate masquerading as a name.
func containsBoilerplate(candidate string, blocklist []string) bool {
	for _, token := range strings.Fields(strings.ToLower(candidate)) {
		for _, blocked := range blocklist {
			if token == blocked {
				return true
			}
		}
	}
	return false
}
