package cmd

import (
	"context"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/ledger"
	"github.com/hiredeck/applicant-radar/internal/logger"
	"github.com/hiredeck/applicant-radar/internal/mailbox"
	"github.com/hiredeck/applicant-radar/internal/notify"
	"github.com/hiredeck/applicant-radar/internal/pipeline"
	"github.com/hiredeck/applicant-radar/internal/profile"
	"github.com/hiredeck/applicant-radar/internal/reply"
	"github.com/hiredeck/applicant-radar/internal/secrets"
	"github.com/hiredeck/applicant-radar/internal/sheets"
	"github.com/hiredeck/applicant-radar/internal/textract"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one monitoring cycle over the mailbox fetch window",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), viper.GetString("log-file"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		zlog.Fatal("config is required")
	}

	if config.Email == nil || config.Email.Address == "" {
		zlog.Fatal("mailbox address is required under email.address")
	}

	zlog.Info("starting applicant-radar", zap.String("version", version))

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}

	requirements, err := loadRequirements(config)
	if err != nil {
		zlog.Fatal("loading requirements profile", zap.Error(err))
	}
	zlog.Info("requirements profile loaded",
		zap.String("position", requirements.Position),
		zap.Int("required_skills", len(requirements.RequiredSkills)),
	)

	led, err := ledger.Open(dataDir)
	if err != nil {
		zlog.Fatal("opening ledger", zap.Error(err))
	}
	defer led.Close()

	processed, replies := led.Counts()
	zlog.Info("ledger loaded",
		zap.Int("processed_messages", processed),
		zap.Int("sent_replies", replies),
	)

	password, err := secrets.Load(secrets.Source{
		Name:           "mailbox app password",
		File:           config.Email.PasswordFile,
		KeyringAccount: secrets.MailAccount(config.Email.Address, config.Email.Host),
	})
	if err != nil {
		zlog.Fatal(
			"loading mailbox credentials",
			zap.Error(err),
			zap.String("hint", "run 'applicant-radar setup' or set RADAR_EMAIL_PASSWORD_FILE"),
		)
	}

	mail, err := mailbox.Connect(ctx, config.Email.Config, password, zlog)
	if err != nil {
		// Transport failure ends the run cleanly; nothing was processed.
		zlog.Error("connecting to mailbox", zap.Error(err))
		return
	}
	defer mail.Close()

	deps := pipeline.Deps{
		Mail:      mail,
		Storage:   buildStorage(ctx, config, zlog),
		Notifier:  buildNotifier(config, zlog),
		Replier:   buildReplier(config, password, zlog),
		Extractor: buildExtractor(config),
		Ledger:    led,
		Logger:    zlog,
	}

	counters, err := pipeline.New(pipeline.Config{
		Scoring:      config.Scoring,
		Requirements: requirements,
		CacheDir:     filepath.Join(dataDir, "cv_cache"),
		AutoReply:    config.AutoReply,
	}, deps).Run(ctx)
	if err != nil {
		zlog.Error("run ended early", zap.Error(err))
	}

	zlog.Info("monitor finished",
		zap.Int("fetched", counters.Fetched),
		zap.Int("applications", counters.Applications),
		zap.Int("scored", counters.Scored),
		zap.Int("passed", counters.Passed),
		zap.Int("notified", counters.Notified),
		zap.Int("replied", counters.Replied),
	)
}

func loadRequirements(config *Config) (profile.Requirements, error) {
	if len(config.Requirements) > 0 {
		return profile.FromMap(config.Requirements)
	}

	path := config.RequirementsFile
	if path == "" {
		path = "requirements.yaml"
	}
	return profile.Load(path)
}

func buildStorage(ctx context.Context, config *Config, zlog *zap.Logger) sheets.Sink {
	if config.Storage == nil {
		zlog.Warn("no storage configured, candidate records will not be saved")
		return nil
	}

	csvFile := "applications_backup.csv"
	csvEnabled := false
	if config.Storage.CSV != nil {
		csvEnabled = config.Storage.CSV.Enabled
		if config.Storage.CSV.File != "" {
			csvFile = config.Storage.CSV.File
		}
	}
	backup := sheets.NewCSVStore(csvFile, zlog)

	if config.Storage.Sheets != nil && config.Storage.Sheets.Enabled {
		gs, err := sheets.NewGoogleSheets(ctx, config.Storage.Sheets.Config, backup, zlog)
		if err != nil {
			zlog.Warn("google sheets unavailable, using csv storage", zap.Error(err))
			return backup
		}
		return gs
	}

	if csvEnabled {
		zlog.Info("google sheets disabled, using csv storage")
		return backup
	}

	zlog.Warn("no storage enabled, candidate records will not be saved")
	return nil
}

func buildNotifier(config *Config, zlog *zap.Logger) notify.Sink {
	if config.Notify == nil || !config.Notify.Enabled {
		return notify.Noop{}
	}

	token, err := secrets.Load(secrets.Source{
		Name: "twilio auth token",
		File: config.Notify.AuthTokenFile,
	})
	if err != nil {
		zlog.Warn("notifications disabled", zap.Error(err))
		return notify.Noop{}
	}

	return notify.NewTwilio(config.Notify.Config, token, zlog)
}

func buildReplier(config *Config, password string, zlog *zap.Logger) reply.Sink {
	if !config.AutoReply.Enabled {
		return nil
	}
	if config.Email.SMTPHost == "" {
		zlog.Warn("auto-reply enabled but email.smtp-host is not set; replies disabled")
		return nil
	}
	return reply.NewSMTP(config.Email.SMTPHost, config.Email.Address, password, zlog)
}

func buildExtractor(config *Config) textract.Extractor {
	if config.CVParsing {
		return textract.Docconv{}
	}
	return textract.Noop{}
}
