package extract

import "strings"

// Tokens and domains that mark a sender address as automated. Replying to
// these produces bounce loops or mail to a portal relay, never a candidate.
var automatedTokens = []string{
	"noreply", "no-reply", "no_reply",
	"donotreply", "do-not-reply", "do_not_reply",
	"auto", "automated", "bot", "robot",
	"notification", "notify", "alert",
	"mailer", "daemon", "server",
	"academic", "premium", "service",
}

var automatedDomains = []string{
	"@linkedin.com",
	"@indeed.com",
	"@glassdoor.com",
	"@mailchimp.com",
	"@sendgrid.com",
	"@amazonses.com",
}

// Automated reports whether the address belongs to a non-human sender.
func Automated(email string) bool {
	if email == "" {
		return false
	}

	lower := strings.ToLower(email)

	for _, token := range automatedTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}

	for _, domain := range automatedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}

	return false
}

// ContactEmail runs the full contact-safety gate: extract, validate, and
// discard automated senders. An empty result means "do not contact".
func ContactEmail(fromHeader string) string {
	email := Email(fromHeader)
	if email == "" {
		return ""
	}
	if Automated(email) {
		return ""
	}
	return email
}
