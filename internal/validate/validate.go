package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone   = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	reGallery = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,39}$`)
)

const (
	MaxNameLen    = 120
	MaxMessageLen = 1000
	MaxCompanions = 20
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// OptionalEmail accepts an empty value or a well-formed address.
func OptionalEmail(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	return Email(s)
}

// ID validates a simple resource identifier (uuid or slug).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxNameLen {
		return "", false
	}
	return s, true
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, rePhone.MatchString(s)
}

// Text trims s and enforces a rune limit.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= max
}

func Companions(n int) bool { return n >= 0 && n <= MaxCompanions }

// Gallery validates an album gallery key: lowercase slug.
func Gallery(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reGallery.MatchString(s)
}

// Password enforces the admin password policy.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
