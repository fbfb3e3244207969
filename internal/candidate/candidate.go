// Package candidate defines the record handed to storage, notification and
// reply collaborators once a message has been extracted and scored.
package candidate

import (
	"strings"
	"time"

	"github.com/hiredeck/applicant-radar/internal/scoring"
)

// Record is one processed application. An empty Email means the sender may
// not be contacted: the address was missing, invalid or automated. The
// record is still stored and scored; only the reply step is suppressed.
type Record struct {
	Timestamp time.Time
	Name      string
	Email     string
	Phone     string
	Position  string
	Subject   string
	CVText    string
	CVPath    string
	Score     int
	Feedback  []string
	Status    scoring.Status
}

// Contactable reports whether an auto-reply may be sent to this candidate.
func (r *Record) Contactable() bool {
	return r.Email != ""
}

// FeedbackLine joins the rubric feedback for display and storage.
func (r *Record) FeedbackLine() string {
	return strings.Join(r.Feedback, "; ")
}
