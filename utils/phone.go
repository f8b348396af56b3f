package utils

import "strings"

// CleanPhoneNumber removes all non-numeric characters. Vonage expects
// E.164 digits without the leading "+".
func CleanPhoneNumber(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// IsValidPhone accepts 8 to 15 digits once cleaned.
func IsValidPhone(phone string) bool {
	digits := CleanPhoneNumber(phone)
	return len(digits) >= 8 && len(digits) <= 15
}
