// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// maxNameBytes is the file name limit shared by ext4, APFS and NTFS.
const maxNameBytes = 255

// untitled replaces a title that sanitizes to nothing.
const untitled = "untitled"

// illegalChars cannot appear in file names on Windows; '/' is also illegal
// on every POSIX filesystem.
const illegalChars = `\/:*?"<>|`

// reservedNames are Windows device names that cannot be used as a file stem.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Sanitize makes title usable as a file name stem on common filesystems.
// Illegal and control characters are removed rather than replaced, leading
// whitespace and trailing spaces and dots are trimmed, and Windows device
// names get a trailing underscore.
func Sanitize(title string) string {
	var b strings.Builder
	for _, r := range title {
		if r == utf8.RuneError || unicode.IsControl(r) || strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	name := strings.TrimLeftFunc(b.String(), unicode.IsSpace)
	name = strings.TrimRight(name, " .")

	if reservedNames[strings.ToUpper(name)] {
		name += "_"
	}
	if name == "" {
		return untitled
	}
	return name
}

// ArtifactName returns "<YYYYMMDD>_<sanitized-title>.md" for the local date
// of now, truncating the title so the whole name fits in maxNameBytes.
func ArtifactName(title string, now time.Time) string {
	prefix := now.Format("20060102") + "_"
	const ext = ".md"

	stem := truncateBytes(Sanitize(title), maxNameBytes-len(prefix)-len(ext))
	stem = strings.TrimRight(stem, " .")
	if stem == "" {
		stem = untitled
	}
	return prefix + stem + ext
}

// truncateBytes shortens s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
