package paystack

import (
	"strings"

	"applygate/internal/common"
)

const subscriberDigits = 9

// NormalizePhone converts local ("0712345678"), bare subscriber ("712345678")
// and already-prefixed international forms into one canonical international
// representation without a leading plus.
func NormalizePhone(raw, countryPrefix string) (string, error) {
	digits := digitsOf(raw)
	if digits == "" {
		return "", common.NewValidationError("invalid phone number", map[string]string{"phone": "phone is required"})
	}

	var subscriber string
	switch {
	case strings.HasPrefix(digits, countryPrefix) && len(digits) > len(countryPrefix):
		subscriber = digits[len(countryPrefix):]
	case strings.HasPrefix(digits, "0"):
		subscriber = digits[1:]
	default:
		subscriber = digits
	}

	if len(subscriber) < subscriberDigits {
		return "", common.NewValidationError("invalid phone number", map[string]string{"phone": "phone number is too short"})
	}
	return countryPrefix + subscriber, nil
}

func digitsOf(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
