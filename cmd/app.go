package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/ai"
	"github.com/zafaraftab1/careercopilot/internal/ai/gemini"
	"github.com/zafaraftab1/careercopilot/internal/engine"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/logger"
	"github.com/zafaraftab1/careercopilot/internal/matching"
	"github.com/zafaraftab1/careercopilot/internal/notify"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
	"github.com/zafaraftab1/careercopilot/internal/scheduler"
	"github.com/zafaraftab1/careercopilot/internal/scraper"
	"github.com/zafaraftab1/careercopilot/internal/secrets"
	"github.com/zafaraftab1/careercopilot/internal/storage/postgres"
	"github.com/zafaraftab1/careercopilot/internal/submit"
)

// application is the fully wired object graph shared by the run, schedule and
// stats commands.
type application struct {
	config    *Config
	logger    *zap.Logger
	ledger    *ledger.Ledger
	scraper   *scraper.Service
	processor *pipeline.Processor
	notifier  notify.Notifier
	scheduler *scheduler.Scheduler

	close func()
}

// newApplication wires every component from the parsed config. dryRun swaps
// the browser submitter for a logging one.
func newApplication(ctx context.Context, config *Config, log *zap.Logger, dryRun bool) (*application, error) {
	store, closeStore, err := buildStore(ctx, config, log)
	if err != nil {
		return nil, err
	}

	led := ledger.New(store, ledger.Config{
		DailyLimit:    config.DailyLimit,
		ResumeVersion: config.Candidate.ResumeVersion,
	}, log)

	matcher := matching.New(config.Candidate.Vocabulary(), matching.Config{
		ExperienceYears: config.Candidate.ExperienceYears,
	})

	eng := engine.New(matcher, engine.Config{
		MatchThreshold: config.MatchThreshold,
	})

	submitter, submitTimeout, err := buildSubmitter(config, dryRun, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	composer, err := buildComposer(ctx, config, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	processor := pipeline.New(pipeline.Deps{
		Engine:    eng,
		Ledger:    led,
		Submitter: submitter,
		Composer:  composer,
		Logger:    log,
	}, pipeline.Config{
		SubmitTimeout:  submitTimeout,
		DefaultMessage: config.DefaultMessage,
	})

	seen, err := buildSeenCache(ctx, config, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	sources, err := buildSources(config, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	notifier, err := buildNotifier(config, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	scrapeService := scraper.NewService(sources, store, seen, log)

	schedCfg := scheduler.Config{}
	if config.Schedule != nil {
		schedCfg.CycleSpec = config.Schedule.CycleSpec
		schedCfg.SummarySpec = config.Schedule.SummarySpec
		schedCfg.RunOnStart = config.Schedule.RunOnStart
	}

	return &application{
		config:    config,
		logger:    log,
		ledger:    led,
		scraper:   scrapeService,
		processor: processor,
		notifier:  notifier,
		scheduler: scheduler.New(scrapeService, processor, led, notifier, config.Candidate, schedCfg, log),
		close: func() {
			if seen != nil {
				_ = seen.Close()
			}
			closeStore()
		},
	}, nil
}

// buildStore connects to postgres when database-url is set and falls back to
// the in-memory store otherwise. The in-memory store loses history on exit,
// which is fine for dry runs and useless for anything else.
func buildStore(ctx context.Context, config *Config, log *zap.Logger) (ledger.Store, func(), error) {
	if strings.TrimSpace(config.DatabaseURL) == "" {
		log.Warn("database-url is not configured, application history will not survive restarts")
		return ledger.NewMemoryStore(), func() {}, nil
	}

	store, err := postgres.Connect(ctx, config.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return store, store.Close, nil
}

func buildSeenCache(ctx context.Context, config *Config, log *zap.Logger) (*scraper.SeenCache, error) {
	if strings.TrimSpace(config.RedisURL) == "" {
		return nil, nil
	}

	seen, err := scraper.NewSeenCache(ctx, config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return seen, nil
}

func buildSources(config *Config, log *zap.Logger) ([]scraper.Source, error) {
	sources := make([]scraper.Source, 0, len(config.Portals))

	for _, pc := range config.Portals {
		if pc == nil || strings.TrimSpace(pc.Name) == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(pc.Kind)) {
		case "", "api":
			token := ""
			if pc.TokenFile != "" {
				var err error
				token, err = secrets.Load(secrets.Source{
					Name: fmt.Sprintf("%s api token", pc.Name),
					File: pc.TokenFile,
				})
				if err != nil {
					return nil, err
				}
			}
			sources = append(sources, scraper.NewClient(pc.Name, pc.BaseURL, token, log))
		case "html":
			sources = append(sources, scraper.NewHTMLSource(pc.Name, pc.SearchURL, pc.Selectors, log))
		default:
			return nil, fmt.Errorf("portal %s: unknown kind %q", pc.Name, pc.Kind)
		}
	}

	if len(sources) == 0 {
		log.Warn("no portals configured, scrape cycles will find nothing")
	}

	return sources, nil
}

func buildSubmitter(config *Config, dryRun bool, log *zap.Logger) (submit.Submitter, time.Duration, error) {
	if dryRun || config.Submit == nil {
		if config.Submit == nil && !dryRun {
			log.Warn("submit section is not configured, running submissions in dry-run mode")
		}
		return submit.NewDryRun(log), 0, nil
	}

	password, err := secrets.Load(secrets.Source{
		Name: "portal password",
		Env:  "PORTAL_PASSWORD",
		File: config.Submit.PasswordFile,
	})
	if err != nil {
		return nil, 0, err
	}

	var timeout time.Duration
	if config.Submit.Timeout != "" {
		timeout, err = time.ParseDuration(config.Submit.Timeout)
		if err != nil {
			return nil, 0, fmt.Errorf("parsing submit.timeout: %w", err)
		}
	}

	browser := submit.NewBrowser(submit.BrowserConfig{
		Email:    config.Submit.Email,
		Password: password,
		Timeout:  timeout,
	}, log)

	return browser, timeout, nil
}

func buildComposer(ctx context.Context, config *Config, log *zap.Logger) (ai.Composer, error) {
	if config.AI == nil || !config.AI.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	gcfg := config.AI.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
		File: gcfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := log.With(logger.AIFields("gemini", gcfg.Model)...)

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewComposer(generator, config.Candidate, gcfg.MaxLogLength, genLogger), nil
}

func buildNotifier(config *Config, log *zap.Logger) (notify.Notifier, error) {
	if config.Email == nil || !config.Email.Enabled {
		return nil, nil
	}

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		Env:  "SMTP_PASSWORD",
		File: config.Email.PasswordFile,
	})
	if err != nil {
		return nil, err
	}

	return notify.NewEmailNotifier(notify.EmailConfig{
		Host:      config.Email.Host,
		Port:      config.Email.Port,
		Sender:    config.Email.Sender,
		Password:  password,
		Recipient: config.Email.Recipient,
	}, log)
}
