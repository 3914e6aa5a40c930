package cli

import (
	"log/slog"
	"os"

	"github.com/me/jobq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking JOBQ_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("JOBQ_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the jobq CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobq",
		Short: "jobq: priority job queue client",
		Long:  "jobq adds, inspects and processes jobs on a jobq server, or runs a local queue with the shell command.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "jobq server URL (or JOBQ_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newShowCmd(),
		newNextCmd(),
		newProcessCmd(),
		newClearCmd(),
		newHistoryCmd(),
		newClearHistoryCmd(),
		newStatsCmd(),
		newShellCmd(),
	)

	return root
}
