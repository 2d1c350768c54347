package paystack

import (
	"testing"

	"applygate/internal/common"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"local format", "0712345678", "254712345678"},
		{"bare subscriber", "712345678", "254712345678"},
		{"already prefixed", "254712345678", "254712345678"},
		{"international with plus", "+254712345678", "254712345678"},
		{"spaces and dashes", " 0712-345 678 ", "254712345678"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.raw, "254")
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizePhoneRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no digits", "call me"},
		{"too short local", "0712345"},
		{"too short bare", "712345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NormalizePhone(tc.raw, "254"); !common.Is(err, common.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
