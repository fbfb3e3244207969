package message

import (
	"bytes"
	"io"
	netmail "net/mail"
	"strings"

	gomessage "github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Parse decodes a raw message into a Message. Parsing is best-effort: a
// malformed part ends part iteration but never fails the whole message, and
// a message whose MIME structure cannot be read at all still yields its
// headers and raw body via the net/mail fallback.
func Parse(id string, raw []byte) *Message {
	msg := &Message{ID: id}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		parseFallback(msg, raw)
		return msg
	}

	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = CleanHeader(subject)
	} else {
		msg.Subject = CleanHeader(mr.Header.Get("Subject"))
	}

	if from, err := mr.Header.Text("From"); err == nil {
		msg.From = CleanHeader(from)
	} else {
		msg.From = CleanHeader(mr.Header.Get("From"))
	}

	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !gomessage.IsUnknownCharset(err) {
			break
		}
		if part == nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, err := h.ContentType()
			if err != nil {
				ct = "text/plain"
			}
			body, _ := io.ReadAll(part.Body)
			msg.Parts = append(msg.Parts, BodyPart{
				ContentType: ct,
				Text:        CleanText(body),
			})
		case *mail.AttachmentHeader:
			filename, err := h.Filename()
			if err != nil || filename == "" {
				continue
			}
			data, _ := io.ReadAll(part.Body)
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename: filename,
				Ext:      attachmentExt(filename),
				Data:     data,
			})
		}
	}

	return msg
}

// parseFallback pulls headers and a single text part out of messages the
// MIME reader rejects outright.
func parseFallback(msg *Message, raw []byte) {
	m, err := netmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return
	}

	msg.Subject = CleanHeader(m.Header.Get("Subject"))
	msg.From = CleanHeader(m.Header.Get("From"))
	if ds := m.Header.Get("Date"); ds != "" {
		if t, err := netmail.ParseDate(ds); err == nil {
			msg.Date = t
		}
	}

	body, err := io.ReadAll(m.Body)
	if err != nil || len(body) == 0 {
		return
	}

	ct := m.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "text/") {
		msg.Parts = append(msg.Parts, BodyPart{
			ContentType: "text/plain",
			Text:        CleanText(body),
		})
	}
}
