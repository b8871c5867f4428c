package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPan_NameBetweenLabels(t *testing.T) {
	result := Extract("Name: JOHN ROBERT DOE\nFather's Name: RICHARD DOE", Pan)
	require.Equal(t, "JOHN ROBERT DOE", result.Name)
	require.Empty(t, result.IDNumber, "no PAN pattern present")
	require.Empty(t, result.FormatWarning)
}

func TestPan_NameStopsAtDateLiteral(t *testing.T) {
	result := Extract("Name: ANITA VERMA 12/03/1985", Pan)
	require.Equal(t, "ANITA VERMA", result.Name)
}

func TestPan_NameStripsHonorifics(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"mr with initials", "Name: Mr. S K Sharma\nDate of Birth: 01/01/1970", "Sharma"},
		{"shri", "Name: Shri Rajesh Gupta\nFather's Name: X", "Rajesh Gupta"},
		{"smt", "Name: Smt Kavita Rani Iyer\nDate", "Kavita Rani Iyer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Extract(tt.text, Pan)
			require.Equal(t, tt.expected, result.Name)
		})
	}
}

func TestPan_NameKeepsOnlyAlphabeticTokens(t *testing.T) {
	result := Extract("Name: JOHN D0E3 SMITH JR\nFather", Pan)
	require.Equal(t, "JOHN SMITH", result.Name)
}

func TestPan_Number(t *testing.T) {
	result := Extract("Permanent Account Number\nABCDE1234F\nName: RAVI", Pan)
	require.Equal(t, "ABCDE1234F", result.IDNumber)
	require.Empty(t, result.FormatWarning)
}

func TestPan_NoNameLabel(t *testing.T) {
	result := Extract("INCOME TAX DEPARTMENT\nABCDE1234F", Pan)
	require.Empty(t, result.Name)
	require.Equal(t, "ABCDE1234F", result.IDNumber)
}
