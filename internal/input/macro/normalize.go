package macro

import "strings"

// commentMarker starts a comment anywhere in a line, even mid-word.
const commentMarker = "//"

// Normalize strips the comment from one raw source line and splits what
// remains into words. An empty result means the line should be skipped.
func Normalize(line string) []string {
	if i := strings.Index(line, commentMarker); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}

// HeaderName reports whether a normalized line is a macro header
// ("name:") and returns the name without its colon.
func HeaderName(words []string) (string, bool) {
	if len(words) != 1 || !strings.HasSuffix(words[0], ":") {
		return "", false
	}
	return strings.TrimSuffix(words[0], ":"), true
}
