package app

import (
	"fmt"
	"strings"
	"time"

	"applygate/internal/common"
)

const referencePrefix = "APP-"

// BuildReference encodes the application id and a creation timestamp into the
// payment reference passed to the gateway.
func BuildReference(applicationID common.UUID, at time.Time) string {
	return fmt.Sprintf("%s%s-%d", referencePrefix, applicationID, at.UnixMilli())
}

// ParseReference extracts the application id from a payment reference of the
// form APP-<applicationId>-<epochMillis>.
func ParseReference(reference string) (common.UUID, error) {
	trimmed := strings.TrimSpace(reference)
	if !strings.HasPrefix(trimmed, referencePrefix) {
		return "", common.NewValidationError("invalid payment reference", map[string]string{"reference": "missing APP prefix"})
	}
	rest := trimmed[len(referencePrefix):]
	cut := strings.LastIndex(rest, "-")
	if cut <= 0 {
		return "", common.NewValidationError("invalid payment reference", map[string]string{"reference": "missing timestamp suffix"})
	}
	suffix := rest[cut+1:]
	if suffix == "" || !isDigits(suffix) {
		return "", common.NewValidationError("invalid payment reference", map[string]string{"reference": "malformed timestamp suffix"})
	}
	return common.ParseUUID(rest[:cut])
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
