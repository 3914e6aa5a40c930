package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var priority int

	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a job to the pending queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/jobs/", map[string]any{
				"name":     strings.Join(args, " "),
				"priority": priority,
			})
			if err != nil {
				return fmt.Errorf("add job: %w", err)
			}
			job, _, err := decodeJob(resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added job %s\n", summary(job))
			return nil
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Job priority (lower runs first)")
	cmd.MarkFlagRequired("priority")
	return cmd
}

// listPath builds a list endpoint URL from the shared listing flags.
func listPath(base, where string, limit, offset int, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	if where != "" {
		q.Set("where", where)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func newListCmd() *cobra.Command {
	var (
		where  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending jobs in processing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get(listPath("/api/v1/jobs/", where, limit, offset, nil))
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			jobs, err := decodeJobs(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printJobs(out, jobs, "No pending jobs.")
			printMore(out, len(jobs), resp.Pagination)
			return nil
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "JavaScript filter, e.g. 'job.priority <= 3'")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum jobs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Jobs to skip")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single job, pending or processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/jobs/" + url.PathEscape(args[0]))
			if err != nil {
				return fmt.Errorf("get job: %w", err)
			}
			job, _, err := decodeJob(resp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %d\n", job.ID)
			fmt.Fprintf(out, "Name:      %s\n", job.Name)
			fmt.Fprintf(out, "Priority:  P%d (%s)\n", job.Priority, job.Band())
			fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
			if job.IsProcessed() {
				fmt.Fprintf(out, "Processed: %s\n", job.ProcessedAt.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Processed: pending")
			}
			return nil
		},
	}
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the job that would be processed next",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/jobs/next")
			if err != nil {
				return fmt.Errorf("peek job: %w", err)
			}
			job, ok, err := decodeJob(resp)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending jobs.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next job %s, %s\n", summary(job), age(job))
			return nil
		},
	}
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Process the next pending job",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/jobs/process", nil)
			if err != nil {
				return fmt.Errorf("process job: %w", err)
			}
			job, ok, err := decodeJob(resp)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs to process.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed job %s\n", summary(job))
			return nil
		},
	}
}

const clearPrompt = "Are you sure you want to clear the job queue? [y/N] "

// confirm prints prompt and reads one answer line from in.
func confirm(in *bufio.Scanner, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	if !in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every pending job",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes && !confirm(bufio.NewScanner(cmd.InOrStdin()), out, clearPrompt) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
			resp, err := client.Delete("/api/v1/jobs/?confirm=true")
			if err != nil {
				return fmt.Errorf("clear jobs: %w", err)
			}
			n, err := decodeCleared(resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d pending job(s).\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func decodeCleared(resp *apiResponse) (int, error) {
	var data struct {
		Cleared int `json:"cleared"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, fmt.Errorf("parse response: %w", err)
	}
	return data.Cleared, nil
}
