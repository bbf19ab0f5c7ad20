// Package sanitize restricts outbound HTML-mode message text to the inline
// tags Telegram renders reliably. Everything else is stripped so malformed
// or hostile markup cannot break message rendering or escape its intended
// formatting boundary.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// Policy represents a sanitization policy for outbound message text.
type Policy struct {
	policy *bluemonday.Policy
}

// NewTelegramPolicy creates a Policy allowing only the b, i, and code
// inline tags.
func NewTelegramPolicy() *Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "code")
	return &Policy{policy: p}
}

// SanitizeText strips every tag outside the allow-list from text.
func (p *Policy) SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return p.policy.Sanitize(text)
}
