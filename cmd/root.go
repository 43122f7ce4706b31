/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for qscan.
package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bokiquiz.dev/qscan/cmd/extract"
	"bokiquiz.dev/qscan/cmd/history"
	"bokiquiz.dev/qscan/cmd/list"
	"bokiquiz.dev/qscan/cmd/patch"
	"bokiquiz.dev/qscan/cmd/search"
	"bokiquiz.dev/qscan/cmd/validate"
	"bokiquiz.dev/qscan/cmd/version"
	"bokiquiz.dev/qscan/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qscan",
	Short: "Locate, validate and patch quiz question records",
	Long: `qscan reads the question arrays of TypeScript and JavaScript data files,
validates each record against bookkeeping rules, and rewrites single fields
in place without disturbing the rest of the file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(viper.GetBool("verbose"))
	},
}

// Execute runs the root command.
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Log debug output")
	flags.StringP("root", "C", ".", "Project root holding .config/qscan.{yaml,yml,json}")
	flags.String("parser", "", "Record parser: scan or treesitter (default from config)")
	flags.String("vocabulary", "", "Vocabulary file merged over the built-in accounts")
	flags.String("journal", "", "Edit journal database (default .qscan/journal.db)")
	_ = viper.BindPFlags(flags)

	rootCmd.AddCommand(extract.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(list.Cmd)
	rootCmd.AddCommand(patch.Cmd)
	rootCmd.AddCommand(search.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

// initEnv loads .env and lets QSCAN_* variables stand in for flags.
func initEnv() {
	_ = godotenv.Load()
	viper.SetEnvPrefix("QSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
