package utils

import (
	"fmt"
	"strings"
)

// NormalizePhone strips everything but digits and accepts 10-digit
// national or 11-digit numbers.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 10 && len(digits) != 11 {
		return "", fmt.Errorf("phone number must have 10 or 11 digits, got %d", len(digits))
	}
	return digits, nil
}

// E164 formats normalized digits for the SMS transport.
func E164(digits string) string {
	if len(digits) == 10 {
		return "+1" + digits
	}
	return "+" + digits
}
