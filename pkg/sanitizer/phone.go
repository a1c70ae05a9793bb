package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Phone region fallback for numbers entered without a country prefix.
const defaultPhoneRegion = "DE"

// Phone normalizes a phone number to E.164. Unparsable input is
// returned trimmed rather than rejected; the validators decide whether
// a field is acceptable.
func Phone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
