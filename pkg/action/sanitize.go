package action

import "regexp"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SanitizeName restricts an action name to letters, digits, '_', '.' and '-'.
// Every other rune is replaced with '_'.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
