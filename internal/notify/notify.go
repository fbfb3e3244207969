// Package notify is the fire-and-forget notification sink: a WhatsApp
// message through the Twilio REST API for every passing candidate. Send
// failures are logged, never propagated; there is no retry and no ledger
// entry, since message-id dedup already prevents repeats.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
)

const apiURL = "https://api.twilio.com/2010-04-01"

// Sink delivers one notification text.
type Sink interface {
	Send(ctx context.Context, text string)
}

// Config holds Twilio account details. From and To are WhatsApp-prefixed
// numbers, e.g. "whatsapp:+14155238886".
type Config struct {
	AccountSID string `mapstructure:"account-sid"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
}

// Twilio posts messages to the Twilio Messages endpoint.
type Twilio struct {
	cfg        Config
	authToken  string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func NewTwilio(cfg Config, authToken string, logger *zap.Logger) *Twilio {
	return &Twilio{
		cfg:       cfg,
		authToken: authToken,
		logger:    logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		APIURL: apiURL,
	}
}

func (t *Twilio) Send(ctx context.Context, text string) {
	if t.cfg.From == "" || t.cfg.To == "" {
		t.logger.Warn("notification numbers not configured")
		return
	}

	form := url.Values{}
	form.Set("Body", text)
	form.Set("From", t.cfg.From)
	form.Set("To", t.cfg.To)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.APIURL, t.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		t.logger.Error("building notification request", zap.Error(err))
		return
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		t.logger.Error("sending notification", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		t.logger.Error("sending notification", zap.String("status", resp.Status))
		return
	}

	t.logger.Info("notification sent", zap.String("to", t.cfg.To))
}

// Noop is selected when notifications are disabled.
type Noop struct{}

func (Noop) Send(context.Context, string) {}

// Alert formats the high-score notification body for one candidate.
func Alert(rec *candidate.Record, maxScore int) string {
	phone := rec.Phone
	if phone == "" {
		phone = "N/A"
	}

	return fmt.Sprintf(`*High-Scoring Candidate Alert!*

*Name:* %s
*Email:* %s
*Phone:* %s
*Position:* %s
*Score:* %d/%d

*Feedback:*
%s

*Time:* %s

CV has been saved. Consider scheduling an interview!`,
		rec.Name,
		rec.Email,
		phone,
		rec.Position,
		rec.Score,
		maxScore,
		rec.FeedbackLine(),
		rec.Timestamp.Format("2006-01-02 15:04:05"),
	)
}
