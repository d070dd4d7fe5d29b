package utils

// Clip cuts text to at most n runes. It never splits a multi-byte character.
func Clip(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// Truncate is Clip with a trailing "..." when anything was cut.
func Truncate(text string, n int) string {
	clipped := Clip(text, n)
	if len(clipped) == len(text) {
		return text
	}
	return clipped + "..."
}
