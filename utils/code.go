package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortCode returns an uppercase code of n characters derived from a UUID.
// Used for referral and withdrawal lookup codes.
func ShortCode(n int) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > 0 && n < len(code) {
		return code[:n]
	}
	return code
}
