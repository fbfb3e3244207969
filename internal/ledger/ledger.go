// Package ledger is the durable de-duplication authority: which messages
// have been processed, and which senders already received a reply today.
//
// State lives in two append-only line-delimited files under the data dir.
// Entries are never removed. Every append is flushed to disk before control
// returns, so a crash mid-batch never repeats a completed side effect.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	processedFile = "processed_emails.txt"
	repliesFile   = "sent_replies.txt"
	lockFile      = ".radar.lock"
)

// Ledger tracks processed message ids and sent-reply keys. It is not safe
// for concurrent use; the pipeline is single-threaded and the file lock
// keeps other processes out of the data dir.
type Ledger struct {
	lock      *flock.Flock
	processed map[string]struct{}
	replies   map[string]struct{}
	procF     *os.File
	replF     *os.File
}

// Open loads both sets into memory and takes an exclusive lock on the data
// dir. A second process opening the same dir fails fast instead of racing
// the append files.
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking ledger dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("ledger dir %q is locked by another process", dir)
	}

	l := &Ledger{
		lock:      lock,
		processed: make(map[string]struct{}),
		replies:   make(map[string]struct{}),
	}

	l.procF, err = openSet(filepath.Join(dir, processedFile), l.processed)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	l.replF, err = openSet(filepath.Join(dir, repliesFile), l.replies)
	if err != nil {
		l.procF.Close()
		lock.Unlock()
		return nil, err
	}

	return l, nil
}

func openSet(path string, into map[string]struct{}) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file %q: %w", path, err)
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			into[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading ledger file %q: %w", path, err)
	}

	return f, nil
}

// SeenMessage reports whether the message id has already been processed.
func (l *Ledger) SeenMessage(id string) bool {
	_, ok := l.processed[id]
	return ok
}

// MarkMessage records a message id as processed, durably.
func (l *Ledger) MarkMessage(id string) error {
	if l.SeenMessage(id) {
		return nil
	}
	if err := appendLine(l.procF, id); err != nil {
		return fmt.Errorf("recording processed message: %w", err)
	}
	l.processed[id] = struct{}{}
	return nil
}

// ReplyKey builds the daily per-sender reply identifier.
func ReplyKey(email string, day time.Time) string {
	return email + "_" + day.Format("2006-01-02")
}

// RepliedToday reports whether the sender already received a reply on the
// given day.
func (l *Ledger) RepliedToday(email string, day time.Time) bool {
	_, ok := l.replies[ReplyKey(email, day)]
	return ok
}

// MarkReplied records a sent reply, durably. Call only after the outbound
// send reported success; a failed send must stay retryable.
func (l *Ledger) MarkReplied(email string, day time.Time) error {
	key := ReplyKey(email, day)
	if _, ok := l.replies[key]; ok {
		return nil
	}
	if err := appendLine(l.replF, key); err != nil {
		return fmt.Errorf("recording sent reply: %w", err)
	}
	l.replies[key] = struct{}{}
	return nil
}

// Counts returns the loaded set sizes, for startup logging.
func (l *Ledger) Counts() (processed, replies int) {
	return len(l.processed), len(l.replies)
}

// Close releases the files and the dir lock.
func (l *Ledger) Close() error {
	var firstErr error
	if err := l.procF.Close(); err != nil {
		firstErr = err
	}
	if err := l.replF.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := l.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func appendLine(f *os.File, line string) error {
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}
