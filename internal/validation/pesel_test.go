package validation

import (
	"testing"
	"time"
)

func TestValidatePesel(t *testing.T) {
	tests := []struct {
		name      string
		pesel     string
		valid     bool
		birthDate string
	}{
		{
			name:      "valid 1900s",
			pesel:     "44101000006",
			valid:     true,
			birthDate: "1944-10-10",
		},
		{
			name:      "valid 2000s leap day",
			pesel:     "00222900009",
			valid:     true,
			birthDate: "2000-02-29",
		},
		{
			name:      "valid 1800s",
			pesel:     "85810100009",
			valid:     true,
			birthDate: "1885-01-01",
		},
		{
			name:      "valid 2100s",
			pesel:     "10412500005",
			valid:     true,
			birthDate: "2110-01-25",
		},
		{
			name:      "valid 2200s",
			pesel:     "50611500008",
			valid:     true,
			birthDate: "2250-01-15",
		},
		{
			name:      "surrounding whitespace is trimmed",
			pesel:     " 44101000006 ",
			valid:     true,
			birthDate: "1944-10-10",
		},
		{
			name:  "month outside every century range despite valid checksum",
			pesel: "02151500006",
			valid: false,
		},
		{
			name:  "month zero despite valid checksum",
			pesel: "44001000003",
			valid: false,
		},
		{
			name:  "wrong checksum",
			pesel: "44101000007",
			valid: false,
		},
		{
			name:  "day zero despite valid checksum",
			pesel: "44100000007",
			valid: false,
		},
		{
			name:  "february 30 despite valid checksum",
			pesel: "00223000005",
			valid: false,
		},
		{
			name:  "february 29 in non-leap 1900",
			pesel: "00022900003",
			valid: false,
		},
		{
			name:  "contains letter",
			pesel: "4410100000a",
			valid: false,
		},
		{
			name:  "too short",
			pesel: "4410100000",
			valid: false,
		},
		{
			name:  "too long",
			pesel: "441010000066",
			valid: false,
		},
		{
			name:  "empty string",
			pesel: "",
			valid: false,
		},
		{
			name:  "interior space",
			pesel: "44101 00006",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birthDate, ok := ValidatePesel(tt.pesel)
			if ok != tt.valid {
				t.Fatalf("ValidatePesel(%q) = %v, want %v", tt.pesel, ok, tt.valid)
			}
			if !tt.valid {
				return
			}
			want, err := time.Parse("2006-01-02", tt.birthDate)
			if err != nil {
				t.Fatalf("parse expected date: %v", err)
			}
			if !birthDate.Equal(want) {
				t.Fatalf("birth date = %s, want %s", birthDate.Format("2006-01-02"), tt.birthDate)
			}
		})
	}
}

func TestValidatePesel_SingleDigitMutationInvalidates(t *testing.T) {
	const valid = "44101000006"

	if !IsValidPesel(valid) {
		t.Fatalf("reference PESEL %q must be valid", valid)
	}

	for i := 0; i < len(valid); i++ {
		for d := byte('0'); d <= '9'; d++ {
			if valid[i] == d {
				continue
			}
			mutated := valid[:i] + string(d) + valid[i+1:]
			if IsValidPesel(mutated) {
				t.Fatalf("mutation at position %d produced valid PESEL %q", i, mutated)
			}
		}
	}
}

func TestValidatePesel_ExactlyOneControlDigit(t *testing.T) {
	const prefix = "4410100000"

	validCount := 0
	for d := byte('0'); d <= '9'; d++ {
		if IsValidPesel(prefix + string(d)) {
			validCount++
		}
	}

	if validCount != 1 {
		t.Fatalf("prefix %q has %d valid control digits, want exactly 1", prefix, validCount)
	}
}
