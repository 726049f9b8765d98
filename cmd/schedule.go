package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily automation loop until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		schedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().Bool("now", false, "run one cycle immediately instead of waiting for the first tick")
}

func schedule(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting careercopilot scheduler", zap.String("version", version))

	if cmd.Flag("now").Value.String() == "true" {
		if config.Schedule == nil {
			config.Schedule = &ScheduleConfig{}
		}
		config.Schedule.RunOnStart = true
	}

	app, err := newApplication(ctx, config, logger, false)
	if err != nil {
		logger.Fatal("wiring components", zap.Error(err))
	}
	defer app.close()

	if err := app.scheduler.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	app.scheduler.Stop()
}
