// Package email normalizes addresses and derives display names from them.
package email

import (
	"net/mail"
	"strings"
	"unicode"

	dErrors "bloodlink/pkg/domain-errors"
)

// Normalize trims and lower-cases an address and rejects anything that is
// not a bare addr-spec.
func Normalize(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(addr) > 254 {
		return "", dErrors.New(dErrors.CodeValidation, "email must be at most 254 characters")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	return addr, nil
}

// DeriveName turns "jane.doe@x" into "Jane Doe". Used when a registrant
// leaves the name blank.
func DeriveName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Donor"
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
