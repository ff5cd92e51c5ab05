// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Digits strips everything but digits. Webhook JIDs and gateway payloads use
// this bare form ("5511999999999") rather than E.164.
func Digits(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
}

// GatewayNumber prepares a phone number for the WhatsApp gateway: digits only,
// with the Brazilian country code prepended when the number looks like a bare
// local number (10 or 11 digits).
func GatewayNumber(input string) string {
	digits := Digits(NormalizeE164(input))
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}
