package constants

import "strings"

// AllowedExtensions holds the file extensions dossierd accepts from its inbox.
var AllowedExtensions = map[string]struct{}{
	"json": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
