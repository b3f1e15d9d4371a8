package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/declutter/app/runtime"
)

var (
	cfgFile      string
	flagProvider string
	flagModel    string
	flagTrace    string
	flagDebugLLM bool

	globalCfg runtime.Config
)

// Execute is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "declutter",
		Short:         "LLM-assisted file organization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				cfgFile = defaultConfigPath()
			}
			cfg, err := runtime.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			if flagProvider != "" {
				cfg.Provider = flagProvider
			}
			if flagModel != "" {
				cfg.Model = flagModel
			}
			if flagTrace != "" {
				cfg.TracePath = flagTrace
			}
			if flagDebugLLM {
				cfg.DebugLLM = true
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to declutter config file")
	root.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "Model name override")
	root.PersistentFlags().StringVar(&flagTrace, "trace", "", "Write provider telemetry to this ndjson file")
	root.PersistentFlags().BoolVar(&flagDebugLLM, "debug-llm", false, "Log provider requests and responses")

	root.AddCommand(
		newAnalyzeCmd(),
		newSessionsCmd(),
	)
	return root
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".declutter", "config.yaml")
}
