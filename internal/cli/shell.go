package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/me/jobq/internal/scheduler"
	"github.com/me/jobq/internal/validate"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  add <name...> <priority>   add a job (priority %d-%d, lower runs first)
  list                       pending jobs in processing order
  next                       job that would be processed next
  process                    process the next job
  history                    processed jobs, newest first
  clear                      drop every pending job
  clear-history              forget processed jobs
  stats                      queue and history counts
  help                       this text
  exit | quit                leave the shell
`

// shell is a line-oriented front end over a local scheduler.
type shell struct {
	sched      *scheduler.JobScheduler
	rules      validate.Rules
	maxPending int

	in  *bufio.Scanner
	out io.Writer
}

func newShellCmd() *cobra.Command {
	var (
		minPriority int
		maxPriority int
		maxPending  int
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run an interactive job queue in this process",
		Long:  "shell keeps a job queue in memory for the life of the session. Nothing is sent to a server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := validate.Rules{MinPriority: minPriority, MaxPriority: maxPriority}
			if rules.MinPriority > rules.MaxPriority {
				return fmt.Errorf("--min-priority %d is greater than --max-priority %d", minPriority, maxPriority)
			}
			sh := &shell{
				sched:      scheduler.New(scheduler.WithLogger(logger)),
				rules:      rules,
				maxPending: maxPending,
				in:         bufio.NewScanner(cmd.InOrStdin()),
				out:        cmd.OutOrStdout(),
			}
			return sh.run()
		},
	}

	cmd.Flags().IntVar(&minPriority, "min-priority", validate.DefaultMinPriority, "Lowest accepted priority")
	cmd.Flags().IntVar(&maxPriority, "max-priority", validate.DefaultMaxPriority, "Highest accepted priority")
	cmd.Flags().IntVar(&maxPending, "max-pending", 100, "Pending queue capacity (0 for unlimited)")
	return cmd
}

func (sh *shell) run() error {
	fmt.Fprintln(sh.out, "jobq shell. Type 'help' for commands.")
	for {
		fmt.Fprint(sh.out, "jobq> ")
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return sh.in.Err()
		}
		fields := strings.Fields(sh.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
		case "add":
			sh.add(args)
		case "list":
			printJobs(sh.out, sh.sched.ListPendingJobs(), "No pending jobs.")
		case "next":
			if job, ok := sh.sched.PeekNextJob(); ok {
				fmt.Fprintf(sh.out, "Next job %s\n", summary(job))
			} else {
				fmt.Fprintln(sh.out, "No pending jobs.")
			}
		case "process":
			if job, ok := sh.sched.ProcessNextJob(); ok {
				fmt.Fprintf(sh.out, "Processed job %s\n", summary(job))
			} else {
				fmt.Fprintln(sh.out, "No jobs to process.")
			}
		case "history":
			jobs := sh.sched.ListProcessedJobs()
			slices.Reverse(jobs)
			printJobs(sh.out, jobs, "No processed jobs.")
		case "clear":
			if !confirm(sh.in, sh.out, clearPrompt) {
				fmt.Fprintln(sh.out, "Aborted.")
				continue
			}
			fmt.Fprintf(sh.out, "Cleared %d pending job(s).\n", sh.sched.ClearPendingQueue())
		case "clear-history":
			fmt.Fprintf(sh.out, "Cleared %d processed job(s).\n", sh.sched.ClearProcessedHistory())
		case "stats":
			printStats(sh.out, sh.sched.Stats())
		case "help", "?":
			fmt.Fprintf(sh.out, shellHelp, sh.rules.MinPriority, sh.rules.MaxPriority)
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintln(sh.out, "Invalid choice.")
		}
	}
}

// add parses "<name...> <priority>"; the last word is the priority.
func (sh *shell) add(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: add <name...> <priority>")
		return
	}
	priority, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		fmt.Fprintf(sh.out, "Error: priority must be a number, got %q\n", args[len(args)-1])
		return
	}
	name, err := sh.rules.Job(strings.Join(args[:len(args)-1], " "), priority)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(sh.out, "Error: %s\n", f.Message)
			}
			return
		}
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	if sh.maxPending > 0 && sh.sched.Stats().Pending >= sh.maxPending {
		fmt.Fprintf(sh.out, "Error: job queue is full (%d pending)\n", sh.maxPending)
		return
	}

	job := sh.sched.AddJob(name, priority)
	fmt.Fprintf(sh.out, "Added job %s\n", summary(job))
}
