package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hiredeck/applicant-radar/internal/mailbox"
	"github.com/hiredeck/applicant-radar/internal/notify"
	"github.com/hiredeck/applicant-radar/internal/reply"
	"github.com/hiredeck/applicant-radar/internal/scoring"
	"github.com/hiredeck/applicant-radar/internal/sheets"
)

const (
	app = "applicant-radar"
)

type Config struct {
	DataDir          string         `mapstructure:"data-dir"`
	LogFile          string         `mapstructure:"log-file"`
	RequirementsFile string         `mapstructure:"requirements-file"`
	Requirements     map[string]any `mapstructure:"requirements"`
	CVParsing        bool           `mapstructure:"cv-parsing"`
	Email            *EmailConfig   `mapstructure:"email"`
	Scoring          scoring.Config `mapstructure:"scoring"`
	Storage          *StorageConfig `mapstructure:"storage"`
	Notify           *NotifyConfig  `mapstructure:"notify"`
	AutoReply        reply.Config   `mapstructure:"auto-reply"`
}

type EmailConfig struct {
	mailbox.Config `mapstructure:",squash"`
	SMTPHost       string `mapstructure:"smtp-host"`
	PasswordFile   string `mapstructure:"password-file"`
}

type StorageConfig struct {
	Sheets *struct {
		Enabled       bool `mapstructure:"enabled"`
		sheets.Config `mapstructure:",squash"`
	} `mapstructure:"sheets"`
	CSV *struct {
		Enabled bool   `mapstructure:"enabled"`
		File    string `mapstructure:"file"`
	} `mapstructure:"csv"`
}

type NotifyConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	notify.Config `mapstructure:",squash"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applicant-radar monitors a mailbox for job applications, scores candidates and drives notifications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("email.password-file", "RADAR_EMAIL_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding RADAR_EMAIL_PASSWORD_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("notify.auth-token-file", "RADAR_TWILIO_TOKEN_FILE"); err != nil {
		log.Fatalf("binding RADAR_TWILIO_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applicant-radar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	viper.SetDefault("cv-parsing", true)
	viper.SetDefault("scoring.passing-score", 8)
	viper.SetDefault("scoring.max-score", 10)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
