package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
	"github.com/Vovarama1992/tableau-ai-bridge/internal/logging"
)

var cfgFile string

// app carries what every subcommand needs after PersistentPreRunE.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tableau-ai-bridge",
		Short: "Backend for the dashboard summarizer extension",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml if present)")
	root.PersistentFlags().Int("port", config.DefaultPort, "HTTP port")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPromptCmd(a))
	root.AddCommand(newLookupCmd(a))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
