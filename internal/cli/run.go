package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forPelevin/reelcut/internal/config"
	"github.com/forPelevin/reelcut/internal/logging"
	"github.com/forPelevin/reelcut/internal/pipeline"
)

func loadConfig(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()), nil
}

func serve(cmd *cobra.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return pipeline.Serve(ctx, cfg, log)
}

func process(cmd *cobra.Command, input string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out")
	duration, _ := cmd.Flags().GetInt("duration")
	hashtags, _ := cmd.Flags().GetBool("hashtags")
	plan, _ := cmd.Flags().GetBool("plan")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	rc := pipeline.Config{
		InputMP4:    absIn,
		OutDir:      outDir,
		DurationSec: duration,
		Hashtags:    hashtags,
		ContentPlan: plan,
		Title:       title,
		Description: description,
	}
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	manifest, err := pipeline.Run(ctx, cfg, rc, log)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), manifest)
	return nil
}
