package validator

import (
	"net/mail"
	"strconv"
	"strings"
)

// IsValidEmail validates address format.
func IsValidEmail(addr string) bool {
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

// NumericWorkflowID parses a configured workflow/portfolio reference. The
// remote API wants an integer; anything else is surfaced as a validation
// failure on the order, not sent.
func NumericWorkflowID(ref string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsUsablePlaceholderEmail rejects obvious example/placeholder addresses and
// malformed ones. An unusable value means the signer list alone populates the
// workflow roster.
func IsUsablePlaceholderEmail(addr string) bool {
	if addr == "" {
		return false
	}
	lower := strings.ToLower(addr)
	if strings.Contains(lower, "placeholder") || strings.Contains(lower, "yourdomain") {
		return false
	}
	return IsValidEmail(addr)
}
