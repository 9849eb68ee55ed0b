// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refmark CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refmark/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the refmark CLI.
var rootCmd = &cobra.Command{
	Use:   "refmark",
	Short: "Keep numbered citations in a document consistent",
	Long: `refmark maintains citation reference marks in a document. Each mark
records the citation keys it cites and the numbers they currently carry;
after edits that move text around, refmark renumbers the citations by first
appearance and rewrites the marks whose numbers changed.

Documents are YAML files of paragraphs with named annotations. Create one
from plain text with "refmark new", then insert citations, move paragraphs,
and renumber.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Setup(os.Stderr, viper.GetString("log.level"), viper.GetString("log.format"))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refmark.yaml or ~/.config/refmark/refmark.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().Bool("metrics", false, "print engine counters to stderr when the command finishes")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refmark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refmark"))
		}
	}

	viper.SetEnvPrefix("REFMARK")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
