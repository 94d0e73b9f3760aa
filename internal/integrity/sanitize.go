package integrity

import "regexp"

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	forbiddenRe  = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// SanitizeFileName приводит имя файла к безопасному ключу хранилища:
// пробельные символы заменяются на '_', все символы кроме латинских букв,
// цифр, '.', '_' и '-' удаляются.
func SanitizeFileName(name string) string {
	sanitized := whitespaceRe.ReplaceAllString(name, "_")
	return forbiddenRe.ReplaceAllString(sanitized, "")
}
