package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/logger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the application counters for a day",
	Run: func(cmd *cobra.Command, _ []string) {
		stats(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("date", "", "day to report on in YYYY-MM-DD format (default today)")
}

func stats(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	date := time.Now()
	if raw := cmd.Flag("date").Value.String(); raw != "" {
		date, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			logger.Fatal("parsing --date", zap.Error(err))
		}
	}

	app, err := newApplication(ctx, config, logger, true)
	if err != nil {
		logger.Fatal("wiring components", zap.Error(err))
	}
	defer app.close()

	daily, err := app.ledger.DailyStatsOn(ctx, date)
	if err != nil {
		logger.Fatal("loading daily stats", zap.Error(err))
	}

	count, err := app.ledger.DailyApplicationCount(ctx, date)
	if err != nil {
		logger.Fatal("counting applications", zap.Error(err))
	}

	remaining := app.ledger.DailyLimit() - count
	if remaining < 0 {
		remaining = 0
	}

	fmt.Printf("Date:               %s\n", date.Format("2006-01-02"))
	fmt.Printf("Jobs scraped:       %d\n", daily.JobsScraped)
	fmt.Printf("Jobs matched:       %d\n", daily.JobsMatched)
	fmt.Printf("Jobs applied:       %d\n", daily.JobsApplied)
	fmt.Printf("Interviews:         %d\n", daily.InterviewsReceived)
	fmt.Printf("Remaining capacity: %d of %d\n", remaining, app.ledger.DailyLimit())
}
