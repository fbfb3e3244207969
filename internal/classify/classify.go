// Package classify decides whether an inbound message is a job application.
//
// The decision is an ordered cascade of independent rules; the first hit
// wins. Precision is favored over recall: a message matching no rule is
// rejected even if it might be an application.
package classify

import (
	"strings"

	"github.com/hiredeck/applicant-radar/internal/message"
)

var subjectKeywords = []string{
	"apply", "application", "resume", "cv", "job", "position",
	"hiring", "vacancy", "career", "opportunity", "role",
}

var attachmentExts = []string{".pdf", ".doc", ".docx"}

var attachmentKeywords = []string{"cv", "resume", "curriculum", "vitae"}

var jobPortalDomains = []string{
	"linkedin.com", "indeed.com", "glassdoor.com", "rozee.pk",
	"bayt.com", "naukrigulf.com", "monster.com",
}

// rule is one classification predicate. The reason is returned for logging
// when the rule matches.
type rule func(m *message.Message) (bool, string)

var rules = []rule{
	subjectKeywordRule,
	cvAttachmentRule,
	jobPortalRule,
}

// IsApplication reports whether the message looks like a job application,
// along with the matched rule's reason for the log line.
func IsApplication(m *message.Message) (bool, string) {
	for _, r := range rules {
		if ok, reason := r(m); ok {
			return true, reason
		}
	}
	return false, ""
}

func subjectKeywordRule(m *message.Message) (bool, string) {
	subject := strings.ToLower(m.Subject)
	for _, kw := range subjectKeywords {
		if strings.Contains(subject, kw) {
			return true, "subject keyword: " + kw
		}
	}
	return false, ""
}

// cvAttachmentRule requires both a document extension and a CV-ish token in
// the same filename.
func cvAttachmentRule(m *message.Message) (bool, string) {
	for _, a := range m.Attachments {
		name := strings.ToLower(a.Filename)

		hasExt := false
		for _, ext := range attachmentExts {
			if strings.Contains(name, ext) {
				hasExt = true
				break
			}
		}
		if !hasExt {
			continue
		}

		for _, kw := range attachmentKeywords {
			if strings.Contains(name, kw) {
				return true, "cv attachment: " + a.Filename
			}
		}
	}
	return false, ""
}

func jobPortalRule(m *message.Message) (bool, string) {
	from := strings.ToLower(m.From)
	for _, domain := range jobPortalDomains {
		if strings.Contains(from, domain) {
			return true, "job portal sender: " + domain
		}
	}
	return false, ""
}
