package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zafaraftab1/careercopilot/internal/profile"
	"github.com/zafaraftab1/careercopilot/internal/scraper"
)

const (
	app = "careercopilot"
)

// Config is the whole configuration file.
type Config struct {
	Candidate      *profile.Profile `mapstructure:"candidate"`
	DailyLimit     int              `mapstructure:"daily-limit"`
	MatchThreshold int              `mapstructure:"match-threshold"`
	DefaultMessage string           `mapstructure:"default-message"`
	DatabaseURL    string           `mapstructure:"database-url"`
	RedisURL       string           `mapstructure:"redis-url"`
	Portals        []*PortalConfig  `mapstructure:"portals"`
	Submit         *SubmitConfig    `mapstructure:"submit"`
	Email          *EmailConfig     `mapstructure:"email"`
	AI             *AIConfig        `mapstructure:"ai"`
	Schedule       *ScheduleConfig  `mapstructure:"schedule"`
}

// PortalConfig describes one job portal source.
type PortalConfig struct {
	Name string `mapstructure:"name"`
	// Kind is "api" for portals with a JSON search endpoint, "html" for
	// listing-page scraping.
	Kind      string            `mapstructure:"kind"`
	BaseURL   string            `mapstructure:"base-url"`
	SearchURL string            `mapstructure:"search-url"`
	TokenFile string            `mapstructure:"token-file"`
	Selectors scraper.Selectors `mapstructure:"selectors"`
}

// SubmitConfig carries portal login credentials for browser submission.
type SubmitConfig struct {
	Email        string `mapstructure:"email"`
	PasswordFile string `mapstructure:"password-file"`
	Timeout      string `mapstructure:"timeout"`
}

// EmailConfig configures the daily summary email.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Sender       string `mapstructure:"sender"`
	PasswordFile string `mapstructure:"password-file"`
	Recipient    string `mapstructure:"recipient"`
}

// AIConfig configures the application message composer.
type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds the gemini provider settings.
type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// ScheduleConfig holds the cron specs for the schedule command.
type ScheduleConfig struct {
	CycleSpec   string `mapstructure:"cycle-spec"`
	SummarySpec string `mapstructure:"summary-spec"`
	RunOnStart  bool   `mapstructure:"run-on-start"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careercopilot scrapes job portals, scores listings against the candidate profile and applies automatically",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A .env file next to the binary is loaded first so env bindings below
	// can pick its values up. Missing file is fine.
	_ = godotenv.Load()

	if err := viper.BindEnv("database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careercopilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
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

	if config == nil {
		config = &Config{}
	}
	if config.Candidate == nil {
		config.Candidate = profile.Default()
	}

	return config, nil
}
