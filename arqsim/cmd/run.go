package cmd

import (
	"os"
	"os/signal"
	"strconv"

	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/report"
	"github.com/sarchlab/arqsim/simulation"
	"github.com/spf13/cobra"
)

var errMonitorRequired = errors.New(
	"--open, --start-paused and --monitor-port require --monitor")

// MonitorPortEnv sets the monitor port when --monitor-port is not given.
const MonitorPortEnv = "ARQSIM_MONITOR_PORT"

var runCmd = &cobra.Command{
	Use:   "run CONFIG",
	Short: "Simulate the protocol described by a configuration file.",
	Long: "`run CONFIG` simulates the configuration and prints the " +
		"configuration, the trace and a summary. JSON, TOML and YAML " +
		"files are accepted.",
	Args: cobra.ExactArgs(1),
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("csv", "",
		"Also write the trace into a CSV file")
	runCmd.Flags().String("json", "",
		"Also write the trace into a JSON lines file")
	runCmd.Flags().String("db", "",
		"Record the trace and the summary into a SQLite database")
	runCmd.Flags().Bool("log-events", false,
		"Log every event at debug level")
	runCmd.Flags().Bool("monitor", false,
		"Serve the monitoring page while simulating")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring page. Defaults to $"+MonitorPortEnv+
			" or a random port")
	runCmd.Flags().Bool("open", false,
		"Open the monitoring page in a browser")
	runCmd.Flags().Bool("start-paused", false,
		"Wait to be continued from the monitoring page")
	runCmd.Flags().Bool("quiet", false,
		"Only print the configuration and the summary")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	b, err := builderFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if s.MonitorURL() != "" {
		cmd.PrintErrf("Monitoring simulation at %s\n", s.MonitorURL())

		open, _ := cmd.Flags().GetBool("open")
		if open {
			if err := browser.OpenURL(s.MonitorURL()); err != nil {
				logger.Warn().Err(err).Msg("cannot open the browser")
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runErr := s.Run(ctx)

	quiet, _ := cmd.Flags().GetBool("quiet")
	writeErr := report.Write(cmd.OutOrStdout(), s.Report(quiet))

	termErr := s.Terminate()

	for _, path := range s.OutputFiles() {
		logger.Info().Str("path", path).Msg("trace written")
	}

	switch {
	case runErr != nil:
		return runErr
	case writeErr != nil:
		return writeErr
	default:
		return termErr
	}
}

func builderFromFlags(
	cmd *cobra.Command,
	cfg config.Config,
) (simulation.Builder, error) {
	flags := cmd.Flags()
	b := simulation.MakeBuilder().
		WithConfig(cfg).
		WithLogger(logger)

	if flags.Changed("csv") {
		path, _ := flags.GetString("csv")
		b = b.WithCSVTrace(path)
	}

	if flags.Changed("json") {
		path, _ := flags.GetString("json")
		b = b.WithJSONTrace(path)
	}

	if flags.Changed("db") {
		path, _ := flags.GetString("db")
		b = b.WithDBTrace(path)
	}

	if logEvents, _ := flags.GetBool("log-events"); logEvents {
		b = b.WithEventLogging()
	}

	monitor, _ := flags.GetBool("monitor")
	open, _ := flags.GetBool("open")
	paused, _ := flags.GetBool("start-paused")

	if !monitor && (open || paused || flags.Changed("monitor-port")) {
		return b, errMonitorRequired
	}

	if !monitor {
		return b, nil
	}

	b = b.WithMonitor()

	port, err := monitorPort(cmd)
	if err != nil {
		return b, err
	}

	if port != 0 {
		b = b.WithMonitorPort(port)
	}

	if paused {
		b = b.WithStartPaused()
	}

	return b, nil
}

func monitorPort(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Changed("monitor-port") {
		return cmd.Flags().GetInt("monitor-port")
	}

	env := os.Getenv(MonitorPortEnv)
	if env == "" {
		return 0, nil
	}

	return strconv.Atoi(env)
}
