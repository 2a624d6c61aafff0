// Package cmd provides the command-line interface of arqsim.
package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// LogLevelEnv selects the log level when --log-level is not given.
const LogLevelEnv = "ARQSIM_LOG_LEVEL"

var logger = zerolog.Nop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arqsim",
	Short: "arqsim simulates Stop-and-Wait, Go-Back-N and Selective Repeat.",
	Long: `arqsim runs a discrete event simulation of an ARQ protocol ` +
		`described by a configuration file and prints the trace of every ` +
		`sender and receiver action.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, _ := cmd.Flags().GetString("log-level")

		l, err := newLogger(level)
		if err != nil {
			return err
		}

		logger = l

		return nil
	},
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().String("log-level", "",
		"Log level (debug, info, warn, error). Defaults to $"+LogLevelEnv+
			" or warn.")
}

// loadDotEnv reads the variables of a .env file in the working directory,
// if there is one. Variables already set are kept.
func loadDotEnv() {
	_ = godotenv.Load()
}

func newLogger(level string) (zerolog.Logger, error) {
	if level == "" {
		level = os.Getenv(LogLevelEnv)
	}

	if level == "" {
		level = "warn"
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).
		Level(lvl).
		With().Timestamp().Str("app", "arqsim").
		Logger(), nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
