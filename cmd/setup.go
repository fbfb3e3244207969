package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/hiredeck/applicant-radar/internal/secrets"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure the mailbox account and write starter files",
	RunE: func(_ *cobra.Command, _ []string) error {
		return setup()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

const starterConfig = `data-dir: .
log-file: monitor.log

email:
  imap-host: %s
  smtp-host: %s
  address: %s
  folder: INBOX
  window-days: 7
  max-messages: 100

requirements-file: requirements.yaml

scoring:
  passing-score: 8
  max-score: 10

storage:
  sheets:
    enabled: false
    credentials-file: credentials.json
    spreadsheet-id: ""
    sheet-name: Applications
  csv:
    enabled: true
    file: applications_backup.csv

notify:
  enabled: false
  account-sid: ""
  auth-token-file: ""
  from: ""
  to: ""

auto-reply:
  enabled: true
  company-name: Our Company
  interview-days: 3

cv-parsing: true
`

const starterRequirements = `position: Software Engineer
required_skills: []
preferred_skills: []
min_experience: 0
education: []
keywords: []
`

func setup() error {
	address, err := ask("Mailbox address", "", validateAddress)
	if err != nil {
		return err
	}

	imapHost, err := ask("IMAP host", "imap.gmail.com:993", nil)
	if err != nil {
		return err
	}

	smtpHost, err := ask("SMTP host", "smtp.gmail.com:587", nil)
	if err != nil {
		return err
	}

	passwordPrompt := promptui.Prompt{
		Label: "App password",
		Mask:  '*',
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return err
	}

	account := secrets.MailAccount(address, imapHost)
	if err := secrets.Store(account, password); err != nil {
		return fmt.Errorf("storing password in keyring: %w", err)
	}
	log.Printf("password stored in OS keyring (account %s)", account)

	if err := writeIfAbsent(app+".yaml", fmt.Sprintf(starterConfig, imapHost, smtpHost, address)); err != nil {
		return err
	}
	if err := writeIfAbsent("requirements.yaml", starterRequirements); err != nil {
		return err
	}

	log.Printf("setup complete, edit requirements.yaml and run '%s run'", app)
	return nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func validateAddress(s string) error {
	if !strings.Contains(s, "@") {
		return fmt.Errorf("not an email address")
	}
	return nil
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		log.Printf("%s already exists, leaving it untouched", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}
