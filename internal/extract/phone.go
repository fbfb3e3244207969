package extract

import (
	"regexp"

	"github.com/hiredeck/applicant-radar/internal/message"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+?\d{10,15}`),
}

// Phone returns the first phone-shaped match found in the plain-text body
// parts, or empty when none match.
func Phone(m *message.Message) string {
	for _, body := range m.PlainParts() {
		for _, pattern := range phonePatterns {
			if match := pattern.FindString(body); match != "" {
				return match
			}
		}
	}
	return ""
}
