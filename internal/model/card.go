package model

import "strings"

const cardNumberDigits = 16

// mastercardPrefixes are the two-digit prefixes issued on the Mastercard network.
var mastercardPrefixes = map[string]bool{
	"51": true,
	"52": true,
	"53": true,
	"54": true,
	"55": true,
}

// ValidCardNumber reports whether s is a 16-digit Mastercard number once
// dashes and spaces are removed.
func ValidCardNumber(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if len(digits) != cardNumberDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return mastercardPrefixes[digits[:2]]
}
