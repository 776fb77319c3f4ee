package utils

// TruncateString shortens s to at most maxLen bytes, appending "..." when
// data was omitted. It is intended for log output and error previews, not
// for content that is forwarded elsewhere.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateRunes shortens s to at most maxRunes runes without adding any
// suffix. Unlike byte slicing it never splits a UTF-8 sequence, so the
// result is always valid text. A non-positive maxRunes returns s unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
