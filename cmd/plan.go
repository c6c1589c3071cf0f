package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetcap/app"
	"github.com/kilianp07/fleetcap/config"
)

var planDate string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one planning pass and print the advice",
	RunE:  planOnce,
}

func init() {
	planCmd.Flags().StringVarP(&planDate, "date", "d", "", "target date (YYYY-MM-DD, default tomorrow)")
	rootCmd.AddCommand(planCmd)
}

func planOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	targetDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	if planDate != "" {
		targetDate, err = time.ParseInLocation("2006-01-02", planDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid date %q, use YYYY-MM-DD", planDate)
		}
	}

	resp, err := svc.Orchestrator.GenerateAdvice(ctx, targetDate, cfg.Planner.Constraints, "cli")
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
