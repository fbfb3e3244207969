// Package message turns raw RFC822 bytes into a structured Message the
// pipeline can classify and extract fields from. A Message lives for one
// processing cycle only.
package message

import (
	"path/filepath"
	"strings"
	"time"
)

// BodyPart is one decoded inline part of a message body, in wire order.
type BodyPart struct {
	ContentType string
	Text        string
}

// Attachment is one attachment part, in wire order. Data is the decoded
// payload; Ext is the lowercased filename extension including the dot.
type Attachment struct {
	Filename string
	Ext      string
	Data     []byte
}

// Message is the transient per-cycle representation of an inbound email.
// ID is assigned by the mail source and stable across fetches.
type Message struct {
	ID          string
	Subject     string
	From        string
	Date        time.Time
	Parts       []BodyPart
	Attachments []Attachment
}

// PlainParts returns the text of all text/plain body parts, in order.
func (m *Message) PlainParts() []string {
	var out []string
	for _, p := range m.Parts {
		if strings.HasPrefix(p.ContentType, "text/plain") {
			out = append(out, p.Text)
		}
	}
	return out
}

// attachmentExt normalizes a filename into its lowercased extension.
func attachmentExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
