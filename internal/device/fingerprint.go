// Package device turns raw User-Agent strings into a coarse descriptor that
// refresh tokens are bound to. Only browser family, OS name and device class
// are kept, so version bumps within the same browser and OS still match.
package device

import (
	"strings"
	"unicode/utf8"

	"github.com/mssola/useragent"
)

const (
	unknown = "Other"

	classMobile = "Mobile"
	classPC     = "PC"
	classBot    = "Spider"

	maxLen = 100
	sep    = " / "
)

// Fingerprint returns "<family> / <os> / <device>".
func Fingerprint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return format(unknown, unknown, unknown)
	}

	ua := useragent.New(raw)
	family, _ := ua.Browser()
	osName := ua.OSInfo().Name

	// The parser echoes back the first product token for strings it does
	// not recognise; a browser without a platform is treated as unknown.
	if ua.Platform() == "" && osName == "" && !ua.Bot() {
		return format(unknown, unknown, unknown)
	}

	class := classPC
	switch {
	case ua.Bot():
		class = classBot
	case ua.Mobile():
		class = classMobile
	}

	return format(clean(family), clean(osName), class)
}

// format keeps the result within maxLen runes by shortening family and os,
// so the device class always survives.
func format(family, os, class string) string {
	budget := (maxLen - 2*len(sep) - utf8.RuneCountInString(class)) / 2
	return truncate(family, budget) + sep + truncate(os, budget) + sep + class
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func clean(s string) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if s == "" {
		return unknown
	}
	return s
}
