package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
	"github.com/hiredeck/applicant-radar/internal/ledger"
	"github.com/hiredeck/applicant-radar/internal/profile"
	"github.com/hiredeck/applicant-radar/internal/reply"
	"github.com/hiredeck/applicant-radar/internal/scoring"
)

type stubMail struct {
	ids       []string
	raws      map[string]string
	searchErr error
	fetchErr  error
	fetched   []string
}

func (s *stubMail) Search(context.Context) ([]string, error) {
	return s.ids, s.searchErr
}

func (s *stubMail) Fetch(_ context.Context, id string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	s.fetched = append(s.fetched, id)
	return []byte(s.raws[id]), nil
}

type stubStore struct {
	recs []*candidate.Record
	err  error
}

func (s *stubStore) Add(_ context.Context, rec *candidate.Record) error {
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, rec)
	return nil
}

type stubNotifier struct {
	texts []string
}

func (s *stubNotifier) Send(_ context.Context, text string) {
	s.texts = append(s.texts, text)
}

type stubReplier struct {
	sent []string
	err  error
}

func (s *stubReplier) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func rawApplication(from, subject, cvBody string) string {
	return "From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Date: Fri, 14 Mar 2025 10:00:00 +0000\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"b\"\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Please find my CV attached. Phone: +1 555-123-4567\r\n" +
		"--b\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"resume.txt\"\r\n" +
		"\r\n" +
		cvBody + "\r\n" +
		"--b--\r\n"
}

func rawPlain(from, subject, body string) string {
	return "From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		body + "\r\n"
}

type fixture struct {
	mail     *stubMail
	store    *stubStore
	notifier *stubNotifier
	replier  *stubReplier
	ledger   *ledger.Ledger
	pipe     *Pipeline
}

func newFixture(t *testing.T, mail *stubMail) *fixture {
	t.Helper()

	led, err := ledger.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}
	t.Cleanup(func() { led.Close() })

	f := &fixture{
		mail:     mail,
		store:    &stubStore{},
		notifier: &stubNotifier{},
		replier:  &stubReplier{},
		ledger:   led,
	}

	cfg := Config{
		Scoring: scoring.DefaultConfig(),
		Requirements: profile.Requirements{
			Position:       "Backend Engineer",
			RequiredSkills: []string{"go", "python"},
			MinExperience:  2,
			Keywords:       []string{"backend"},
		},
		CacheDir:  t.TempDir(),
		AutoReply: reply.Config{Enabled: true, CompanyName: "Hiredeck"},
		Now: func() time.Time {
			return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
		},
	}

	f.pipe = New(cfg, Deps{
		Mail:     mail,
		Storage:  f.store,
		Notifier: f.notifier,
		Replier:  f.replier,
		Ledger:   led,
		Logger:   zap.NewNop(),
	})
	return f
}

const passingCV = "Backend developer with 5 years of experience in Go and Python. Bachelor of CS."

func TestRunHappyPath(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1"},
		raws: map[string]string{
			"1": rawApplication("Jane Doe <jane@example.com>", "Application for Backend Engineer", passingCV),
		},
	}
	f := newFixture(t, mail)

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Counters{Fetched: 1, Applications: 1, Scored: 1, Passed: 1, Notified: 1, Replied: 1}
	if c != want {
		t.Fatalf("counters = %+v, expected %+v", c, want)
	}

	if len(f.store.recs) != 1 {
		t.Fatalf("expected one stored record, got %d", len(f.store.recs))
	}
	rec := f.store.recs[0]
	if rec.Email != "jane@example.com" {
		t.Fatalf("record email = %q", rec.Email)
	}
	if rec.Position != "Backend Engineer" {
		t.Fatalf("record position = %q", rec.Position)
	}
	if rec.Phone != "+1 555-123-4567" {
		t.Fatalf("record phone = %q", rec.Phone)
	}
	if rec.Status != scoring.StatusPassed {
		t.Fatalf("record status = %q (score %d)", rec.Status, rec.Score)
	}

	if len(f.notifier.texts) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.texts))
	}
	if len(f.replier.sent) != 1 || f.replier.sent[0] != "jane@example.com" {
		t.Fatalf("unexpected replies: %v", f.replier.sent)
	}
	if !f.ledger.SeenMessage("1") {
		t.Fatal("message not marked processed")
	}
}

func TestRunSecondCycleIsIdempotent(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1"},
		raws: map[string]string{
			"1": rawApplication("Jane <jane@example.com>", "Application", passingCV),
		},
	}
	f := newFixture(t, mail)

	if _, err := f.pipe.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if c != (Counters{}) {
		t.Fatalf("second cycle produced side effects: %+v", c)
	}
	if len(f.store.recs) != 1 || len(f.replier.sent) != 1 || len(f.notifier.texts) != 1 {
		t.Fatalf("sinks called again: store=%d replies=%d notifies=%d",
			len(f.store.recs), len(f.replier.sent), len(f.notifier.texts))
	}
}

func TestRunRejectedMessageStillMarked(t *testing.T) {
	mail := &stubMail{
		ids: []string{"5"},
		raws: map[string]string{
			"5": rawPlain("friend@example.com", "Let's grab coffee", "free tomorrow?"),
		},
	}
	f := newFixture(t, mail)

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Fetched != 1 || c.Applications != 0 {
		t.Fatalf("counters = %+v", c)
	}
	if len(f.store.recs) != 0 {
		t.Fatal("rejected message must not be stored")
	}
	if !f.ledger.SeenMessage("5") {
		t.Fatal("rejected message must still be marked processed")
	}
}

func TestRunDailyReplyDedup(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1", "2"},
		raws: map[string]string{
			"1": rawApplication("Jane <jane@example.com>", "Application", passingCV),
			"2": rawApplication("Jane <jane@example.com>", "Resume resend", passingCV),
		},
	}
	f := newFixture(t, mail)

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Applications != 2 {
		t.Fatalf("expected 2 applications, got %d", c.Applications)
	}
	if c.Replied != 1 || len(f.replier.sent) != 1 {
		t.Fatalf("expected exactly one reply for the sender, got %d", len(f.replier.sent))
	}
}

func TestRunStorageFailureDoesNotAbort(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1", "2"},
		raws: map[string]string{
			"1": rawApplication("Jane <jane@example.com>", "Application", passingCV),
			"2": rawApplication("Omar <omar@example.com>", "CV attached", passingCV),
		},
	}
	f := newFixture(t, mail)
	f.store.err = errors.New("sheet quota exceeded")

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run should survive sink failures: %v", err)
	}

	if c.Scored != 2 {
		t.Fatalf("expected both messages scored, got %d", c.Scored)
	}
	if !f.ledger.SeenMessage("1") || !f.ledger.SeenMessage("2") {
		t.Fatal("messages must be marked despite storage failure")
	}
}

func TestRunReplyFailureStaysRetryable(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1"},
		raws: map[string]string{
			"1": rawApplication("Jane <jane@example.com>", "Application", passingCV),
		},
	}
	f := newFixture(t, mail)
	f.replier.err = errors.New("smtp unavailable")

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Replied != 0 {
		t.Fatalf("failed send counted as reply: %+v", c)
	}
	day := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	if f.ledger.RepliedToday("jane@example.com", day) {
		t.Fatal("failed send must not be recorded in the ledger")
	}
}

func TestRunAutomatedSenderGetsNoReply(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1"},
		raws: map[string]string{
			"1": rawApplication("LinkedIn <jobs-noreply@linkedin.com>", "New application received", passingCV),
		},
	}
	f := newFixture(t, mail)

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Applications != 1 {
		t.Fatalf("expected classification to accept, got %+v", c)
	}
	if len(f.replier.sent) != 0 {
		t.Fatalf("automated sender must not receive a reply: %v", f.replier.sent)
	}
	if len(f.store.recs) != 1 {
		t.Fatal("record must still be stored")
	}
	if f.store.recs[0].Email != "" {
		t.Fatalf("automated sender email must be nulled, got %q", f.store.recs[0].Email)
	}
}

func TestRunNotifiesOnlyPassingCandidates(t *testing.T) {
	mail := &stubMail{
		ids: []string{"1"},
		raws: map[string]string{
			"1": rawApplication("Omar <omar@example.com>", "Application", "I am new to programming."),
		},
	}
	f := newFixture(t, mail)

	c, err := f.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Passed != 0 || c.Notified != 0 {
		t.Fatalf("low score must not notify: %+v", c)
	}
	if len(f.notifier.texts) != 0 {
		t.Fatalf("unexpected notifications: %v", f.notifier.texts)
	}
	if c.Replied != 1 {
		t.Fatalf("reply is independent of the verdict: %+v", c)
	}
}

func TestRunSearchFailureIsFatal(t *testing.T) {
	mail := &stubMail{searchErr: fmt.Errorf("imap: connection reset")}
	f := newFixture(t, mail)

	if _, err := f.pipe.Run(context.Background()); err == nil {
		t.Fatal("expected search failure to abort the run")
	}
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	mail := &stubMail{
		ids:      []string{"1"},
		fetchErr: fmt.Errorf("imap: fetch failed"),
	}
	f := newFixture(t, mail)

	if _, err := f.pipe.Run(context.Background()); err == nil {
		t.Fatal("expected fetch failure to abort the run")
	}
	if f.ledger.SeenMessage("1") {
		t.Fatal("unfetched message must stay unmarked")
	}
}
