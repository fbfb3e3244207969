// Package scoring applies the requirements rubric to extracted CV text.
//
// Dimensions with an empty requirement set behave as in the original rubric:
// skill and keyword dimensions are skipped entirely (no points, no feedback
// line), while experience and education award their full points when no
// minimum or terms are configured.
package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hiredeck/applicant-radar/internal/profile"
)

// Status is the review verdict attached to a scored candidate.
type Status string

const (
	StatusPassed Status = "Passed"
	StatusReview Status = "Review"
)

const (
	requiredPoints   = 3
	preferredPoints  = 2
	experiencePoints = 2
	educationPoints  = 1
	keywordPoints    = 2
)

// Config bounds the rubric.
type Config struct {
	PassingScore int `mapstructure:"passing-score"`
	MaxScore     int `mapstructure:"max-score"`
}

// DefaultConfig returns the stock 8-of-10 thresholds.
func DefaultConfig() Config {
	return Config{PassingScore: 8, MaxScore: 10}
}

// Result is the outcome of scoring one candidate.
type Result struct {
	Score    int
	Feedback []string
	Status   Status
}

// FeedbackLine joins the per-dimension feedback for display and storage.
func (r Result) FeedbackLine() string {
	return strings.Join(r.Feedback, "; ")
}

var yearsRe = regexp.MustCompile(`(\d+)\+?\s*years?`)

// Score evaluates cvText against the requirements. It is a pure function:
// same inputs always produce the same result, and nothing is mutated.
func Score(cvText string, req profile.Requirements, cfg Config) Result {
	if cfg.MaxScore <= 0 {
		cfg = DefaultConfig()
	}

	text := strings.ToLower(cvText)

	score := 0
	var feedback []string

	if len(req.RequiredSkills) > 0 {
		matched := countMatches(text, req.RequiredSkills)
		score += fractionPoints(matched, len(req.RequiredSkills), requiredPoints)
		feedback = append(feedback, fmt.Sprintf("Required Skills: %d/%d matched", matched, len(req.RequiredSkills)))
	}

	if len(req.PreferredSkills) > 0 {
		matched := countMatches(text, req.PreferredSkills)
		score += fractionPoints(matched, len(req.PreferredSkills), preferredPoints)
		feedback = append(feedback, fmt.Sprintf("Preferred Skills: %d/%d matched", matched, len(req.PreferredSkills)))
	}

	expScore, expLine := experience(text, req.MinExperience)
	score += expScore
	if expLine != "" {
		feedback = append(feedback, expLine)
	}

	eduScore, eduLine := education(text, req.Education)
	score += eduScore
	if eduLine != "" {
		feedback = append(feedback, eduLine)
	}

	if len(req.Keywords) > 0 {
		matched := countMatches(text, req.Keywords)
		score += fractionPoints(matched, len(req.Keywords), keywordPoints)
		feedback = append(feedback, fmt.Sprintf("Keywords: %d/%d matched", matched, len(req.Keywords)))
	}

	// Clamp: the rubric sums to the max by construction, but the bound must
	// hold even if point constants drift.
	if score > cfg.MaxScore {
		score = cfg.MaxScore
	}

	status := StatusReview
	if score >= cfg.PassingScore {
		status = StatusPassed
	}

	return Result{Score: score, Feedback: feedback, Status: status}
}

func countMatches(text string, terms []string) int {
	matched := 0
	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			matched++
		}
	}
	return matched
}

// fractionPoints maps matched/total onto 0..scale points, flooring the
// fraction so full points require a complete match.
func fractionPoints(matched, total, scale int) int {
	if total <= 0 {
		return 0
	}
	points := matched * scale / total
	if points > scale {
		points = scale
	}
	return points
}

func experience(text string, minYears int) (int, string) {
	if minYears <= 0 {
		return experiencePoints, ""
	}

	m := yearsRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "Experience: Could not determine"
	}

	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "Experience: Could not determine"
	}

	switch {
	case years >= minYears:
		return experiencePoints, fmt.Sprintf("Experience: %d years (meets requirement)", years)
	case years >= minYears-1:
		return 1, fmt.Sprintf("Experience: %d years (close)", years)
	default:
		return 0, fmt.Sprintf("Experience: %d years (below requirement)", years)
	}
}

func education(text string, terms []string) (int, string) {
	if len(terms) == 0 {
		return educationPoints, ""
	}

	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			return educationPoints, "Education: Match found"
		}
	}
	return 0, "Education: No clear match"
}
