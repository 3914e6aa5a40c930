package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		newestFirst bool
		where       string
		limit       int
		offset      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List processed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra url.Values
			if newestFirst {
				extra = url.Values{"order": {"desc"}}
			}
			resp, err := client.Get(listPath("/api/v1/history/", where, limit, offset, extra))
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			jobs, err := decodeJobs(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printJobs(out, jobs, "No processed jobs.")
			printMore(out, len(jobs), resp.Pagination)
			return nil
		},
	}

	cmd.Flags().BoolVar(&newestFirst, "newest-first", false, "Show the most recently processed job first")
	cmd.Flags().StringVar(&where, "where", "", "JavaScript filter, e.g. 'job.band === \"low\"'")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum jobs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Jobs to skip")
	return cmd
}

func newClearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Forget every processed job",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Delete("/api/v1/history/")
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			n, err := decodeCleared(resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d processed job(s).\n", n)
			return nil
		},
	}
}
