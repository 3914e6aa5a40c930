package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/me/jobq/pkg/model"
)

const jobRowFormat = "%-6s  %-30s  %-8s  %-7s  %s\n"

// age describes when a job last changed state, e.g. "Added 3 minutes ago".
func age(j model.Job) string {
	if j.ProcessedAt != nil {
		return "Processed " + humanize.Time(*j.ProcessedAt)
	}
	return "Added " + humanize.Time(j.CreatedAt)
}

// summary is the one-line form used by add, next, process and show.
func summary(j model.Job) string {
	return fmt.Sprintf("#%d %s (P%d, %s)", j.ID, j.Name, j.Priority, j.Band())
}

// printJobs writes a job table. empty is printed instead when there are no rows.
func printJobs(w io.Writer, jobs []model.Job, empty string) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	fmt.Fprintf(w, jobRowFormat, "ID", "NAME", "PRIORITY", "BAND", "AGE")
	fmt.Fprintf(w, jobRowFormat, "--", "----", "--------", "----", "---")
	for _, j := range jobs {
		fmt.Fprintf(w, jobRowFormat,
			fmt.Sprintf("%d", j.ID), j.Name, fmt.Sprintf("P%d", j.Priority), j.Band(), age(j))
	}
}

func printStats(w io.Writer, st model.Stats) {
	fmt.Fprintf(w, "Pending:   %d\n", st.Pending)
	fmt.Fprintf(w, "Processed: %d\n", st.Processed)
	fmt.Fprintf(w, "Next ID:   %d\n", st.NextID)
	if st.Next != nil {
		fmt.Fprintf(w, "Next job:  %s\n", summary(st.Next.Job))
	}
}

// decodeJob parses a single job payload. ok is false for data: null.
func decodeJob(resp *apiResponse) (model.Job, bool, error) {
	if resp.isNull() {
		return model.Job{}, false, nil
	}
	var v model.JobView
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return model.Job{}, false, fmt.Errorf("parse response: %w", err)
	}
	return v.Job, true, nil
}

func decodeJobs(resp *apiResponse) ([]model.Job, error) {
	var views []model.JobView
	if err := json.Unmarshal(resp.Data, &views); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	jobs := make([]model.Job, len(views))
	for i, v := range views {
		jobs[i] = v.Job
	}
	return jobs, nil
}

// printMore notes truncated listings.
func printMore(w io.Writer, shown int, pg *model.Pagination) {
	if pg != nil && pg.HasMore {
		fmt.Fprintf(w, "\n(%d of %d shown)\n", shown, pg.Total)
	}
}
