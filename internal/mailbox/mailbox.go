// Package mailbox is the mail source collaborator: an IMAP client that
// searches a bounded fetch window and returns raw message bytes. Messages
// are fetched with BODY.PEEK[] so processing never sets \Seen.
package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"
)

// Config describes the mailbox to poll.
type Config struct {
	Host        string `mapstructure:"imap-host"`
	Address     string `mapstructure:"address"`
	Folder      string `mapstructure:"folder"`
	WindowDays  int    `mapstructure:"window-days"`
	MaxMessages int    `mapstructure:"max-messages"`
}

// Client wraps an authenticated IMAP session.
type Client struct {
	cli    *imapclient.Client
	cfg    Config
	logger *zap.Logger
}

// Connect dials the IMAP host over TLS, logs in and selects the configured
// folder. Failures here are fatal to the run.
func Connect(ctx context.Context, cfg Config, password string, logger *zap.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("imap host is required")
	}
	if cfg.Address == "" || password == "" {
		return nil, errors.New("mailbox credentials are required")
	}

	serverName := cfg.Host
	if host, _, ok := strings.Cut(cfg.Host, ":"); ok {
		serverName = host
	}

	cli, err := imapclient.DialTLS(cfg.Host, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: serverName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = cli.Close()
	}()

	if err := cli.Login(cfg.Address, password).Wait(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := cli.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("imap select %s: %w", folder, err)
	}

	logger.Info("connected to mailbox",
		zap.String("host", cfg.Host),
		zap.String("address", cfg.Address),
		zap.String("folder", folder),
	)

	return &Client{cli: cli, cfg: cfg, logger: logger}, nil
}

// Search returns the ids of all messages inside the fetch window, oldest
// first, capped at the configured ceiling by keeping the most recent ones.
// Read and unread messages are both included; the ledger, not the \Seen
// flag, decides what is new.
func (c *Client) Search(ctx context.Context) ([]string, error) {
	windowDays := c.cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)

	searchData, err := c.cli.UIDSearch(&imap.SearchCriteria{Since: cutoff}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	c.logger.Info("searched fetch window",
		zap.Int("window_days", windowDays),
		zap.Int("found", len(uids)),
	)

	max := c.cfg.MaxMessages
	if max <= 0 {
		max = 100
	}
	if len(uids) > max {
		uids = uids[len(uids)-max:]
	}

	ids := make([]string, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, strconv.FormatUint(uint64(uid), 10))
	}
	return ids, nil
}

// Fetch returns the full raw RFC822 bytes of one message.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", id, err)
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}

	fetchCmd := c.cli.Fetch(imap.UIDSetNum(imap.UID(n)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		if b := buf.FindBodySection(bodyAll); b != nil {
			return append([]byte(nil), b...), nil
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	return nil, fmt.Errorf("message %s not found", id)
}

// Close logs out and drops the connection.
func (c *Client) Close() {
	if err := c.cli.Logout().Wait(); err != nil {
		c.logger.Debug("imap logout", zap.Error(err))
	}
	_ = c.cli.Close()
}
