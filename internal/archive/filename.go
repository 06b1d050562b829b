package archive

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	fallbackName    = "character"
	fileTimeLayout  = "20060102150405"
	reservedInNames = `\/:*?"<>|`
)

// FileName returns <sanitized-name>_<YYYYMMDDHHMMSS>.zip for an export taken at t
func FileName(name string, t time.Time) string {
	return SanitizeName(name) + "_" + t.Format(fileTimeLayout) + ".zip"
}

// SanitizeName makes a character name safe to use as a file name
func SanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	clean := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(reservedInNames, r), unicode.IsControl(r), unicode.IsSpace(r):
			return '_'
		default:
			return r
		}
	}, name)

	clean = strings.Trim(clean, "._")
	if clean == "" {
		return fallbackName
	}
	return clean
}
