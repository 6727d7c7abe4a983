package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	scriptRegex = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	iframeRegex = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe>`)
	brRegex     = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex    = regexp.MustCompile(`<[^>]*>`)
)

// Email normalizes an email address for storage and comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims the value and removes <script> and <iframe> blocks.
// Pattern-based and best-effort only; user-supplied values must still
// never be treated as trusted HTML.
func Text(s string) string {
	s = strings.TrimSpace(s)
	s = scriptRegex.ReplaceAllString(s, "")
	s = iframeRegex.ReplaceAllString(s, "")
	return s
}

// HTML converts a fragment to plain text: <br> becomes a newline,
// every other tag is stripped.
func HTML(s string) string {
	s = brRegex.ReplaceAllString(s, "\n")
	s = tagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ValidEmail reports whether s looks like an email address. The check
// is structural, not RFC-complete.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// SendParams holds the fields every outbound email must carry.
type SendParams struct {
	Recipient string
	Sender    string
	Subject   string
	Message   string
}

// ValidateSendParams checks p and returns every violation found, not
// just the first.
func ValidateSendParams(p SendParams) []string {
	var violations []string

	if strings.TrimSpace(p.Recipient) == "" {
		violations = append(violations, "recipient is required")
	} else if !ValidEmail(p.Recipient) {
		violations = append(violations, fmt.Sprintf("recipient %q must be a valid email", p.Recipient))
	}

	if strings.TrimSpace(p.Sender) == "" {
		violations = append(violations, "sender is required")
	} else if !ValidEmail(p.Sender) {
		violations = append(violations, fmt.Sprintf("sender %q must be a valid email", p.Sender))
	}

	if strings.TrimSpace(p.Subject) == "" {
		violations = append(violations, "subject is required")
	}

	if strings.TrimSpace(p.Message) == "" {
		violations = append(violations, "message is required")
	}

	return violations
}
