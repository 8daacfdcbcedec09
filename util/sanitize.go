package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var XSSPolicy = bluemonday.UGCPolicy()

// XSSSanitize sanitizes of HTML and returns the unescaped HTML
func XSSSanitize(val string) string {
	return html.UnescapeString(XSSPolicy.Sanitize(val))
}

// SanitizeText strips markup entirely and trims; used for plain-text fields
// like post bodies and bios.
func SanitizeText(val string) string {
	return strings.TrimSpace(XSSSanitize(val))
}
