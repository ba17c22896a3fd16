package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reelcut",
		Short:         "Cut short highlight clips from uploaded videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", "", "Path to YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level (overrides config)")

	root.AddCommand(newServeCmd(), newProcessCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background job workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd)
		},
	}
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Process one local video in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return process(cmd, args[0])
		},
	}
	cmd.Flags().String("out", "", "Output directory (defaults to storage.output_dir)")
	cmd.Flags().Int("duration", 15, "Requested clip duration seconds (capped at 30)")
	cmd.Flags().Bool("hashtags", false, "Generate hashtags")
	cmd.Flags().Bool("plan", false, "Generate a content plan")
	cmd.Flags().String("title", "", "Video title")
	cmd.Flags().String("description", "", "Video description")
	return cmd
}
