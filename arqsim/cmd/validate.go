package cmd

import (
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate CONFIG...",
	Short: "Check configuration files without simulating them.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var firstErr error

		for _, path := range args {
			cfg, err := config.Load(path)
			if err != nil {
				cmd.PrintErrf("%s: %v\n", path, err)

				if firstErr == nil {
					firstErr = err
				}

				continue
			}

			cmd.Printf("%s: ok\n", path)

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				if err := report.WriteConfig(cmd.OutOrStdout(), cfg); err != nil {
					return err
				}
			}
		}

		return firstErr
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("verbose", "v", false,
		"Print the configuration with the defaults applied")
}
