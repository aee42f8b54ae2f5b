package output

import "strings"

// Mask renders a secret value for display. Values of four characters or
// fewer are fully masked; longer values keep their first and last two
// characters with the interior replaced by asterisks of matching length.
func Mask(value string, reveal bool) string {
	if reveal {
		return value
	}

	runes := []rune(value)
	if len(runes) <= 4 {
		return "****"
	}

	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
