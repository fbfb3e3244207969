package extract

import (
	"regexp"
	"strings"
)

// Subject patterns in priority order. The first pattern producing a cleaned,
// non-trivial title wins.
var positionPatterns = []*regexp.Regexp{
	// "applying for Frontend Developer"
	regexp.MustCompile(`(?i)applying\s+for\s+(?:the\s+)?(.+?)(?:\s+(?:position|role|at|@)|$)`),
	// "Frontend Developer application"
	regexp.MustCompile(`(?i)^(.+?)\s+(?:application|apply|job|position)`),
	// "for Frontend Developer position"
	regexp.MustCompile(`(?i)for\s+(?:the\s+)?(.+?)(?:\s+position|:\s*$|[-–—]|$)`),
	// "position: Frontend Developer"
	regexp.MustCompile(`(?i)position:\s*(.+?)(?:\s+[-–—]|$)`),
	// "role: Frontend Developer"
	regexp.MustCompile(`(?i)role:\s*(.+?)(?:\s+[-–—]|$)`),
	// "application for Frontend Developer"
	regexp.MustCompile(`(?i)application\s+(?:for|to)\s+(?:the\s+)?(.+?)(?:\s+[-–—]|at|@|job)`),
	// "@Frontend Developer" or "- Frontend Developer"
	regexp.MustCompile(`(?i)[@\-]\s*(.+?)(?:\s+job|:\s*$|[-–—])`),
}

var commonTitles = []string{
	"Frontend Developer", "Backend Developer", "Full Stack Developer",
	"Software Engineer", "Senior Software Engineer", "Junior Software Engineer",
	"Web Developer", "Mobile Developer", "DevOps Engineer",
	"Data Scientist", "Machine Learning Engineer", "AI Engineer",
	"Product Manager", "Project Manager", "UI/UX Designer",
	"QA Engineer", "Software Tester", "Business Analyst",
	"React Developer", "Angular Developer", "Vue Developer",
	"Node.js Developer", "Python Developer", "Java Developer",
}

var (
	dashRe          = regexp.MustCompile(`[-–_]`)
	trailingRoleRe  = regexp.MustCompile(`(?i)\s+(position|role|job|application|at|@|in).*`)
	trailingWordsRe = regexp.MustCompile(`(?i)\s+(application|apply|for|job|position|role|at|@).*`)
)

// Position extracts a job title from the subject line. The cascade is
// deterministic and total: pattern match, then common-title catalogue, then
// the first subject words, then the configured default.
func Position(subject, defaultPosition string) string {
	clean := strings.TrimSpace(subject)

	for _, pattern := range positionPatterns {
		m := pattern.FindStringSubmatch(clean)
		if m == nil {
			continue
		}

		position := cleanTitle(m[1], trailingRoleRe)
		if len(position) > 2 {
			return position
		}
	}

	lower := strings.ToLower(clean)
	for _, title := range commonTitles {
		if strings.Contains(lower, strings.ToLower(title)) {
			return title
		}
	}

	if words := strings.Fields(clean); len(words) >= 2 {
		take := 3
		if len(words) < take {
			take = len(words)
		}
		position := cleanTitle(strings.Join(words[:take], " "), trailingWordsRe)
		if len(position) > 5 {
			return position
		}
	}

	return defaultPosition
}

// cleanTitle normalizes a raw title candidate: dash variants become spaces,
// trailing role/at suffixes are stripped, and each word is capitalized.
func cleanTitle(raw string, trailing *regexp.Regexp) string {
	title := strings.TrimSpace(raw)
	title = dashRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(trailing.ReplaceAllString(title, ""))

	words := strings.Fields(title)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
