package notify

import (
	"errors"
	"strings"
)

// Recipient is one resolved delivery target. Channel eligibility is decided
// per field: a non-empty Phone makes it SMS-eligible, a non-empty AccountID
// makes it in-app-eligible; the two are independent and may both hold.
type Recipient struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// ErrBadPhone marks numbers that cannot be normalized to local form.
var ErrBadPhone = errors.New("notify: phone number is not a valid 10-digit local number")

// NormalizePhone reduces raw input to the canonical 10-digit local form.
// Accepted shapes: bare 10 digits, a leading 0 trunk prefix, or a +91/91
// country prefix; punctuation and spaces are stripped first.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
	case len(d) == 11 && d[0] == '0':
		d = d[1:]
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		d = d[2:]
	default:
		return "", ErrBadPhone
	}
	if d[0] < '6' {
		// Local mobile numbers start at 6; shorter prefixes are landline or junk.
		return "", ErrBadPhone
	}
	return d, nil
}
