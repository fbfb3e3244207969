// Package extract pulls structured candidate facts out of free-form message
// text. Every heuristic is an ordered cascade with first-success-wins
// semantics so each rule stays independently testable.
package extract

import (
	"regexp"
	"strings"
)

var (
	angleEmailRe = regexp.MustCompile(`<(.+?)>`)
	bareEmailRe  = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	validEmailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRe       = regexp.MustCompile(`["']?(.+?)["']?\s*<`)
)

// Email extracts a validated address from a From header. The angle-bracket
// token is tried first, then any bare email-shaped substring. Addresses
// failing validation are treated as absent.
func Email(fromHeader string) string {
	if m := angleEmailRe.FindStringSubmatch(fromHeader); m != nil {
		email := strings.TrimSpace(m[1])
		if ValidEmail(email) {
			return email
		}
	}

	if m := bareEmailRe.FindString(fromHeader); m != "" {
		email := strings.TrimSpace(m)
		if ValidEmail(email) {
			return email
		}
	}

	return ""
}

// ValidEmail checks local-part, "@", a dotted domain and a 2+ letter TLD.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return validEmailRe.MatchString(email)
}

// Name extracts a display name from a From header: the quoted or bare text
// before "<", else the local-part before "@", else the raw header.
func Name(fromHeader string) string {
	if m := nameRe.FindStringSubmatch(fromHeader); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}

	if at := strings.Index(fromHeader, "@"); at >= 0 {
		return strings.TrimSpace(fromHeader[:at])
	}

	return strings.TrimSpace(fromHeader)
}
