// Package pipeline sequences one monitoring cycle: fetch unseen messages,
// classify, extract, score, and drive at-most-once dispatch through the
// ledger. Processing is strictly sequential; the ledger is the only state
// that outlives a cycle.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
	"github.com/hiredeck/applicant-radar/internal/classify"
	"github.com/hiredeck/applicant-radar/internal/extract"
	"github.com/hiredeck/applicant-radar/internal/ledger"
	"github.com/hiredeck/applicant-radar/internal/logger"
	"github.com/hiredeck/applicant-radar/internal/message"
	"github.com/hiredeck/applicant-radar/internal/notify"
	"github.com/hiredeck/applicant-radar/internal/profile"
	"github.com/hiredeck/applicant-radar/internal/reply"
	"github.com/hiredeck/applicant-radar/internal/scoring"
	"github.com/hiredeck/applicant-radar/internal/sheets"
	"github.com/hiredeck/applicant-radar/internal/textract"
)

// MailSource is the transport collaborator the pipeline reads from. Search
// returns ids in arrival order; Fetch returns raw RFC822 bytes. Transport
// failures are fatal to the run.
type MailSource interface {
	Search(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Counters summarizes one cycle for observability.
type Counters struct {
	Fetched      int
	Applications int
	Scored       int
	Passed       int
	Notified     int
	Replied      int
}

// Config is the per-run configuration.
type Config struct {
	Scoring      scoring.Config
	Requirements profile.Requirements
	CacheDir     string
	AutoReply    reply.Config

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// Deps aggregates the collaborators the pipeline dispatches to.
type Deps struct {
	Mail      MailSource
	Storage   sheets.Sink
	Notifier  notify.Sink
	Replier   reply.Sink
	Extractor textract.Extractor
	Ledger    *ledger.Ledger
	Logger    *zap.Logger
}

type Pipeline struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Scoring.MaxScore <= 0 {
		cfg.Scoring = scoring.DefaultConfig()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	if deps.Extractor == nil {
		deps.Extractor = textract.Noop{}
	}
	return &Pipeline{cfg: cfg, deps: deps}
}

// Run executes one bounded cycle. Messages already in the ledger are skipped
// without a fetch; every attempted message is marked processed once its
// attempt completes, whether it was accepted, rejected or failed. Only
// transport and ledger failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (Counters, error) {
	runLogger := p.deps.Logger.With(zap.String("run_id", uuid.NewString()[:8]))

	var c Counters

	ids, err := p.deps.Mail.Search(ctx)
	if err != nil {
		return c, fmt.Errorf("searching mailbox: %w", err)
	}

	runLogger.Info("fetch window searched", zap.Int("messages", len(ids)))

	for _, id := range ids {
		if p.deps.Ledger.SeenMessage(id) {
			continue
		}

		raw, err := p.deps.Mail.Fetch(ctx, id)
		if err != nil {
			return c, fmt.Errorf("fetching message %s: %w", id, err)
		}
		c.Fetched++

		if err := p.processOne(ctx, runLogger, id, raw, &c); err != nil {
			runLogger.Error("processing message",
				zap.String("message_id", id),
				zap.Error(err),
			)
		}

		// The dedup boundary: marked after the attempt completes, so a kill
		// mid-message safely reprocesses it next run.
		if err := p.deps.Ledger.MarkMessage(id); err != nil {
			return c, fmt.Errorf("marking message %s processed: %w", id, err)
		}
	}

	runLogger.Info("cycle finished",
		zap.Int("fetched", c.Fetched),
		zap.Int("applications", c.Applications),
		zap.Int("scored", c.Scored),
		zap.Int("passed", c.Passed),
		zap.Int("notified", c.Notified),
		zap.Int("replied", c.Replied),
	)

	return c, nil
}

func (p *Pipeline) processOne(ctx context.Context, log *zap.Logger, id string, raw []byte, c *Counters) error {
	msg := message.Parse(id, raw)

	ok, reason := classify.IsApplication(msg)
	if !ok {
		log.Info("not a job application",
			zap.String("message_id", id),
			zap.String("subject", logger.TruncateForLog(msg.Subject, 50)),
		)
		return nil
	}
	c.Applications++

	log.Info("application detected",
		zap.String("message_id", id),
		zap.String("reason", reason),
		zap.String("subject", logger.TruncateForLog(msg.Subject, 80)),
	)

	rec := p.extractRecord(msg, log)

	result := scoring.Score(rec.CVText, p.cfg.Requirements, p.cfg.Scoring)
	rec.Score = result.Score
	rec.Feedback = result.Feedback
	rec.Status = result.Status
	c.Scored++
	if rec.Status == scoring.StatusPassed {
		c.Passed++
	}

	log.Info("candidate scored",
		zap.String("name", rec.Name),
		zap.String("position", rec.Position),
		zap.Int("score", rec.Score),
		zap.Int("max_score", p.cfg.Scoring.MaxScore),
		zap.String("status", string(rec.Status)),
	)

	p.dispatch(ctx, log, rec, c)
	return nil
}

// extractRecord builds the candidate record, applying the contact-safety
// gate. An invalid or automated sender nulls the email so only the reply
// step is suppressed; the record still flows to storage and scoring.
func (p *Pipeline) extractRecord(msg *message.Message, log *zap.Logger) *candidate.Record {
	email := extract.Email(msg.From)
	if email == "" && msg.From != "" {
		log.Warn("no valid sender email",
			zap.String("message_id", msg.ID),
			zap.String("from", msg.From),
		)
	}
	if email != "" && extract.Automated(email) {
		log.Warn("automated sender address, reply suppressed",
			zap.String("message_id", msg.ID),
			zap.String("email", email),
		)
		email = ""
	}

	cvText, cvPath := extract.CV(msg, p.cfg.CacheDir, p.deps.Extractor, log)

	return &candidate.Record{
		Timestamp: p.cfg.Now(),
		Name:      extract.Name(msg.From),
		Email:     email,
		Phone:     extract.Phone(msg),
		Position:  extract.Position(msg.Subject, p.cfg.Requirements.Position),
		Subject:   msg.Subject,
		CVText:    cvText,
		CVPath:    cvPath,
	}
}

// dispatch drives the downstream side effects. Sink failures are collected
// and logged; none aborts the batch. A reply is recorded in the ledger only
// after the sink reports success, keeping failed sends retryable.
func (p *Pipeline) dispatch(ctx context.Context, log *zap.Logger, rec *candidate.Record, c *Counters) {
	var derr error

	if p.deps.Storage != nil {
		if err := p.deps.Storage.Add(ctx, rec); err != nil {
			derr = multierr.Append(derr, fmt.Errorf("store: %w", err))
		}
	}

	if rec.Status == scoring.StatusPassed {
		p.deps.Notifier.Send(ctx, notify.Alert(rec, p.cfg.Scoring.MaxScore))
		c.Notified++
	}

	if p.cfg.AutoReply.Enabled && rec.Contactable() && p.deps.Replier != nil {
		day := p.cfg.Now()
		if p.deps.Ledger.RepliedToday(rec.Email, day) {
			log.Info("already replied today, skipping duplicate",
				zap.String("email", rec.Email),
			)
		} else {
			subject, body := reply.Template(rec, p.cfg.AutoReply)
			if err := p.deps.Replier.Send(ctx, rec.Email, subject, body); err != nil {
				derr = multierr.Append(derr, fmt.Errorf("reply: %w", err))
			} else if err := p.deps.Ledger.MarkReplied(rec.Email, day); err != nil {
				derr = multierr.Append(derr, fmt.Errorf("recording reply: %w", err))
			} else {
				c.Replied++
			}
		}
	}

	if derr != nil {
		log.Warn("dispatch incomplete",
			zap.String("email", rec.Email),
			zap.Error(derr),
		)
	}
}
