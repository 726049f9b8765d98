package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/ledger"
	"github.com/zafaraftab1/careercopilot/internal/logger"
	"github.com/zafaraftab1/careercopilot/internal/pipeline"
)

const (
	PromptYes    = "Yes"
	PromptNo     = "No"
	PromptReport = "Show the scraped jobs first"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed with applications?",
	Items: []string{PromptYes, PromptNo, PromptReport},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape-and-apply cycle",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before applying")
	runCmd.Flags().Bool("dry-run", false, "evaluate and record but do not submit applications")
	runCmd.Flags().Int("limit", 0, "override the configured daily application limit for this run")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting careercopilot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	dryRun := cmd.Flag("dry-run").Value.String() == "true"

	if limit, err := strconv.Atoi(cmd.Flag("limit").Value.String()); err == nil && limit > 0 {
		config.DailyLimit = limit
	}

	app, err := newApplication(ctx, config, logger, dryRun)
	if err != nil {
		logger.Fatal("wiring components", zap.Error(err))
	}
	defer app.close()

	jobs, scraped, err := app.scheduler.Scrape(ctx)
	if err != nil {
		logger.Fatal("scraping portals", zap.Error(err))
	}

	if len(jobs) == 0 {
		recordScrapeOnly(ctx, app, scraped, logger)
		logger.Info("exiting", zap.String("reason", "no new jobs found"))
		return
	}

	logger.Info("jobs ready for evaluation",
		zap.Int("count", len(jobs)),
		zap.Int("scraped", scraped),
	)

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"
	if !autoApprove {
		if err := confirm(jobs, logger); err != nil {
			if errors.Is(err, errExit) {
				// The scrape still counts toward the day's stats.
				recordScrapeOnly(ctx, app, scraped, logger)
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	dispositions, summary, err := app.scheduler.Apply(ctx, jobs, scraped)
	if err != nil {
		logger.Fatal("processing batch", zap.Error(err))
	}

	report(dispositions, summary, logger)
}

// recordScrapeOnly records a cycle that scraped but applied nothing.
func recordScrapeOnly(ctx context.Context, app *application, scraped int, logger *zap.Logger) {
	if _, _, err := app.scheduler.Apply(ctx, nil, scraped); err != nil {
		logger.Warn("recording daily stats", zap.Error(err))
	}
}

// confirm loops on the prompt until the user picks Yes or No.
func confirm(jobs []job.Record, logger *zap.Logger) error {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptYes:
			return nil
		case PromptNo:
			return errExit
		case PromptReport:
			pretty, _ := json.MarshalIndent(jobs, "", "  ")
			logger.Info(string(pretty), zap.Int("count", len(jobs)))
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func report(dispositions []pipeline.Disposition, summary pipeline.Summary, logger *zap.Logger) {
	for _, d := range dispositions {
		fields := []zap.Field{
			zap.String("portal", d.Job.Portal),
			zap.String("portal_job_id", d.Job.PortalJobID),
			zap.String("title", d.Job.Title),
			zap.Int("match_score", d.MatchScore),
			zap.String("status", string(d.Status)),
		}
		if d.Reason != "" {
			fields = append(fields, zap.String("reason", d.Reason))
		}

		switch d.Status {
		case ledger.StatusApplied:
			logger.Info("applied", fields...)
		case ledger.StatusError:
			logger.Warn("submission failed", fields...)
		default:
			logger.Info("skipped", fields...)
		}
	}

	logger.Info("cycle complete",
		zap.Int("processed", summary.Processed),
		zap.Int("matched", summary.Matched),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
}
