package main

import (
	"github.com/spf13/cobra"

	"pdf-translator/internal/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdf-translator",
	Short: "Layout-preserving PDF translation",
	Long: `pdf-translator translates PDF documents while keeping the original page
layout. Text blocks are extracted with their positions, translated through an
OpenAI-compatible API, and stamped back over the source regions.

Mathematical formulas are protected with placeholder tokens so the
translation backend never alters them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.config/pdf-translator/pdf-translator-config.json)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logCfg := logger.DefaultConfig()
		if verbose {
			logCfg.Level = logger.LevelDebug
			logCfg.EnableConsole = true
		}
		return logger.Init(logCfg)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logger.Close()
	}

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}
