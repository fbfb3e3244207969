// Package reply is the outbound auto-reply sink: one acknowledgement email
// per candidate per day, sent over SMTP submission. The daily dedup decision
// belongs to the pipeline and its ledger; this package only sends.
package reply

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hiredeck/applicant-radar/internal/candidate"
)

// Sink sends one email. A nil error means the message was accepted by the
// SMTP host; only then may the caller record the reply as sent.
type Sink interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config describes the reply account and template inputs.
type Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	CompanyName   string `mapstructure:"company-name"`
	InterviewDays int    `mapstructure:"interview-days"`
}

// SMTP sends through a submission endpoint with STARTTLS and PLAIN auth.
// Sends are rate limited so a misconfigured batch cannot hammer the host.
type SMTP struct {
	host     string
	from     string
	password string
	limiter  *rate.Limiter
	logger   *zap.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, a sasl.Client, from string, to []string, r io.Reader) error
}

func NewSMTP(host, from, password string, logger *zap.Logger) *SMTP {
	return &SMTP{
		host:     host,
		from:     from,
		password: password,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:   logger,
		sendMail: func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
			return smtp.SendMail(addr, a, from, to, r)
		},
	}
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if to == "" || !strings.Contains(to, "@") {
		return fmt.Errorf("invalid recipient email %q", to)
	}
	if s.from == "" || s.password == "" {
		return fmt.Errorf("reply account credentials are not configured")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	msg := strings.NewReader(compose(s.from, to, subject, body))
	auth := sasl.NewPlainClient("", s.from, s.password)

	if err := s.sendMail(s.host, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	s.logger.Info("auto-reply sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func compose(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// Template renders the acknowledgement subject and body for a candidate.
func Template(rec *candidate.Record, cfg Config) (subject, body string) {
	company := cfg.CompanyName
	if company == "" {
		company = "Our Company"
	}
	days := cfg.InterviewDays
	if days <= 0 {
		days = 3
	}

	subject = fmt.Sprintf("Application Received - %s | %s", rec.Position, company)
	body = fmt.Sprintf(`Dear %s,

Thank you for applying for the %s role at %s.

We have received your application and it is currently under review. If your profile matches our requirements, you can expect to receive an interview call within %d days.

We appreciate your interest in joining our team!

Best regards,
HR Team
%s
`, rec.Name, rec.Position, company, days, company)
	return subject, body
}
