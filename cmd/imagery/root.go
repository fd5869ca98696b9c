package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	envFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "imagery",
	Short: "Imagery - brand-safe image decisions and generation",
	Long: `Imagery turns social and marketing image requests into deterministic,
brand-safe decisions and, when a decision is live, generates the image
through a configured provider.

Requests that fail the safety gate never reach a provider; they produce a
fallback result that callers can render on their own.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command and exits with the code mapped from its
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var fallback *cli.FallbackError
		if !errors.As(err, &fallback) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json)")
}

// loadEnvFile loads envFile into the process environment so that
// IMAGERY_* overrides and provider keys can live in a dotenv file. Variables
// already set in the environment win. A missing file is not an error.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cli.NewConfigError("env-file", err.Error())
	}
	return nil
}

// formatter returns the formatter selected by --output.
func formatter() (cli.Formatter, error) {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return nil, cli.NewConfigError("output", err.Error())
	}
	return cli.NewFormatter(format), nil
}
