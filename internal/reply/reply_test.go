package reply

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"
	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
)

func TestTemplate(t *testing.T) {
	rec := &candidate.Record{Name: "Jane Doe", Position: "Backend Engineer"}
	cfg := Config{CompanyName: "Hiredeck", InterviewDays: 5}

	subject, body := Template(rec, cfg)

	if subject != "Application Received - Backend Engineer | Hiredeck" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"Dear Jane Doe", "Backend Engineer role at Hiredeck", "within 5 days"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestTemplateDefaults(t *testing.T) {
	rec := &candidate.Record{Name: "Omar", Position: "General"}

	subject, body := Template(rec, Config{})

	if !strings.Contains(subject, "Our Company") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "within 3 days") {
		t.Fatalf("body missing default interview window:\n%s", body)
	}
}

func TestSendComposesAndDelivers(t *testing.T) {
	s := NewSMTP("smtp.example.com:587", "hr@example.com", "secret", zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	s.sendMail = func(addr string, _ sasl.Client, from string, to []string, r io.Reader) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		b, _ := io.ReadAll(r)
		gotMsg = string(b)
		return nil
	}

	err := s.Send(context.Background(), "jane@example.com", "Hello", "body text")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" || gotFrom != "hr@example.com" {
		t.Fatalf("addr = %q, from = %q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "jane@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	for _, want := range []string{
		"From: hr@example.com\r\n",
		"To: jane@example.com\r\n",
		"Subject: Hello\r\n",
		"\r\n\r\nbody text",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestSendRejectsBadInputs(t *testing.T) {
	s := NewSMTP("smtp.example.com:587", "hr@example.com", "secret", zap.NewNop())
	s.sendMail = func(string, sasl.Client, string, []string, io.Reader) error {
		t.Fatal("sendMail must not be called")
		return nil
	}

	if err := s.Send(context.Background(), "not-an-address", "s", "b"); err == nil {
		t.Fatal("expected error for invalid recipient")
	}

	unconfigured := NewSMTP("smtp.example.com:587", "", "", zap.NewNop())
	if err := unconfigured.Send(context.Background(), "jane@example.com", "s", "b"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	s := NewSMTP("smtp.example.com:587", "hr@example.com", "secret", zap.NewNop())
	s.sendMail = func(string, sasl.Client, string, []string, io.Reader) error {
		return errors.New("454 try again later")
	}

	err := s.Send(context.Background(), "jane@example.com", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "jane@example.com") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
