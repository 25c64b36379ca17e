package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/dataset-validator/internal/utils"
)

// app carries the state shared by all subcommands
type app struct {
	logLevel string
	envFile  string
	logger   *logrus.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "dataset-validator",
		Short: "A tool to assess the quality of tabular data exports",
		Long: `Dataset Validator

A Go tool that checks legacy table exports (dBase, CSV, MySQL tables) for
duplicates, type violations, missing values and character encoding problems,
and rates the result with an overall quality grade.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = utils.SetupLogging(a.logLevel)
			// A .env file may carry VALIDATOR_LOG_LEVEL
			if utils.LoadEnvironmentVariables(a.envFile, a.logger) && a.logLevel == "" {
				a.logger = utils.SetupLogging("")
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.envFile, "env-file", "e", ".env", "Path to .env file")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newValidateTableCmd(a),
		newConvertCmd(a),
		newProbeCmd(a),
		newGenerateCmd(a),
	)
	return rootCmd
}
