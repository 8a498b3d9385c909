package lobby

import (
	"strings"
	"unicode/utf8"
)

// MaxNicknameLength is the longest nickname kept, in runes.
const MaxNicknameLength = 16

// SanitizeNickname keeps letters, digits, underscore, dash, spaces and
// cyrillic, trims the result and cuts it to MaxNicknameLength runes.
// It returns "" when fewer than two usable characters remain.
func SanitizeNickname(raw string) string {
	if !utf8.ValidString(raw) {
		return ""
	}
	cleaned := make([]rune, 0, len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' || r == ' ' ||
			(r >= 0x0400 && r <= 0x04FF) {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) > MaxNicknameLength {
		cleaned = cleaned[:MaxNicknameLength]
	}
	name := strings.TrimSpace(string(cleaned))
	if utf8.RuneCountInString(name) < 2 {
		return ""
	}
	return name
}
