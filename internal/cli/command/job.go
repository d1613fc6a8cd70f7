// Package command provides CLI command definitions for jobctl.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nodeops/jobctl/internal/cli/output"
	"github.com/nodeops/jobctl/internal/core/domain"
	"github.com/nodeops/jobctl/internal/core/service"
)

// JobCommand returns the job subcommand group.
func JobCommand() *cli.Command {
	return &cli.Command{
		Name:    "job",
		Aliases: []string{"jobs"},
		Usage:   "Manage jobs on the node",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List jobs",
				Action: jobList,
			},
			{
				Name:  "create",
				Usage: "Create a job from a TOML specification file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "spec",
						Aliases:  []string{"s"},
						Usage:    "Path to the job specification file",
						Required: true,
					},
				},
				Action: jobCreate,
			},
			{
				Name:      "run",
				Usage:     "Trigger a run and wait for its outcome",
				ArgsUsage: "JOB_ID",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Poll interval",
					},
					&cli.IntFlag{
						Name:  "attempts",
						Usage: "Maximum number of status polls",
					},
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "Trigger the run and return without polling",
					},
				},
				Action: jobRun,
			},
			{
				Name:      "delete",
				Usage:     "Delete a job (a missing job counts as deleted)",
				ArgsUsage: "JOB_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: jobDelete,
			},
			{
				Name:  "purge",
				Usage: "Delete every job on the node",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: jobPurge,
			},
			{
				Name:  "verify",
				Usage: "Create, run and delete a job end to end",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "spec",
						Aliases:  []string{"s"},
						Usage:    "Path to the job specification file",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Poll interval",
					},
					&cli.IntFlag{
						Name:  "attempts",
						Usage: "Maximum number of status polls",
					},
				},
				Action: jobVerify,
			},
		},
	}
}

func jobList(c *cli.Context) error {
	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	jobs, err := svc.jobs.List(c.Context)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(svc.cfg, c)
	if err != nil {
		return err
	}
	if err := formatter.Format(c.App.Writer, jobs); err != nil {
		return err
	}
	// Keep machine-readable output clean; the notice is for humans.
	if len(jobs) == 0 && svc.cfg.Output.Format == string(output.FormatTable) {
		fmt.Fprintln(c.App.Writer, "No jobs registered.")
	}
	return nil
}

func jobCreate(c *cli.Context) error {
	spec, err := readSpec(c.String("spec"))
	if err != nil {
		return err
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	jobID, err := svc.jobs.Create(c.Context, spec)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Job %s created.\n", jobID)
	return nil
}

func jobRun(c *cli.Context) error {
	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job ID required")
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	runID, err := svc.jobs.StartRun(c.Context, jobID)
	if err != nil {
		return err
	}

	if c.Bool("no-wait") {
		fmt.Fprintf(c.App.Writer, "Run %s started for job %s.\n", runID, jobID)
		return nil
	}

	result, err := awaitRun(c, svc, jobID, runID)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(svc.cfg, c)
	if err != nil {
		return err
	}
	if err := formatter.Format(c.App.Writer, runReport(jobID, runID, result)); err != nil {
		return err
	}
	return result.Err()
}

func jobDelete(c *cli.Context) error {
	jobID := c.Args().First()
	if jobID == "" {
		return fmt.Errorf("job ID required")
	}

	if !c.Bool("force") && !confirm(c, fmt.Sprintf("Delete job '%s'?", jobID)) {
		fmt.Fprintln(c.App.Writer, "Cancelled.")
		return nil
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	if err := svc.jobs.Delete(c.Context, jobID); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Job %s deleted.\n", jobID)
	return nil
}

func jobPurge(c *cli.Context) error {
	if !c.Bool("force") && !confirm(c, "Delete ALL jobs on the node?") {
		fmt.Fprintln(c.App.Writer, "Cancelled.")
		return nil
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	jobs, err := svc.jobs.List(c.Context)
	if err != nil {
		return err
	}

	deleted := 0
	var lastErr error
	for _, job := range jobs {
		if err := svc.jobs.Delete(c.Context, job.ID); err != nil {
			lastErr = err
			fmt.Fprintf(c.App.ErrWriter, "error: delete job %s: %v\n", job.ID, err)
			continue
		}
		deleted++
	}

	fmt.Fprintf(c.App.Writer, "Deleted %d of %d jobs.\n", deleted, len(jobs))
	return lastErr
}

func jobVerify(c *cli.Context) error {
	spec, err := readSpec(c.String("spec"))
	if err != nil {
		return err
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	jobID, err := svc.jobs.Create(c.Context, spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Job %s created.\n", jobID)

	// The job is removed whatever the run does, even when the
	// invocation was cancelled mid-poll.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(c.Context), 30*time.Second)
		defer cancel()
		if err := svc.jobs.Delete(cleanupCtx, jobID); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "error: cleanup job %s: %v\n", jobID, err)
			return
		}
		fmt.Fprintf(c.App.Writer, "Job %s deleted.\n", jobID)
	}()

	runID, err := svc.jobs.StartRun(c.Context, jobID)
	if err != nil {
		return err
	}

	result, err := awaitRun(c, svc, jobID, runID)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(svc.cfg, c)
	if err != nil {
		return err
	}
	if err := formatter.Format(c.App.Writer, runReport(jobID, runID, result)); err != nil {
		return err
	}
	return result.Err()
}

// awaitRun polls the run to a terminal outcome, animating a spinner
// on stderr while waiting.
func awaitRun(c *cli.Context, svc *services, jobID, runID string) (*service.Result, error) {
	interval := svc.cfg.Poll.Interval
	if c.IsSet("interval") {
		interval = c.Duration("interval")
	}
	attempts := svc.cfg.Poll.Attempts
	if c.IsSet("attempts") {
		attempts = c.Int("attempts")
	}

	spin := output.NewSpinner(c.App.ErrWriter,
		fmt.Sprintf("waiting for run %s (up to %d polls)", runID, attempts))
	spin.Start()
	defer spin.Stop()

	poller := service.NewPoller(svc.jobs, interval, attempts)
	result, err := poller.Await(c.Context, jobID, runID)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case service.OutcomeSucceeded:
		spin.Success(fmt.Sprintf("run %s succeeded after %d polls", runID, result.Attempts))
	default:
		spin.Fail(fmt.Sprintf("run %s %s after %d polls", runID, result.Outcome, result.Attempts))
	}
	return result, nil
}

// runReport builds the formatted report for a finished polling
// session.
func runReport(jobID, runID string, result *service.Result) output.RunReport {
	report := output.RunReport{
		JobID:    jobID,
		RunID:    runID,
		Outcome:  result.Outcome.String(),
		Attempts: result.Attempts,
	}
	if result.Run != nil {
		report.Status = string(result.Run.Status)
		report.Detail = result.Run.ErrorDetail()
	}
	if result.Cause != nil && report.Detail == "" {
		report.Detail = result.Cause.Error()
	}
	return report
}

// readSpec loads the job specification file verbatim.
func readSpec(path string) (domain.JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.JobSpec{}, fmt.Errorf("read spec file: %w", err)
	}
	return domain.JobSpec{TOML: string(data)}, nil
}

// confirm asks for interactive confirmation on stdin.
func confirm(c *cli.Context, prompt string) bool {
	fmt.Fprintf(c.App.Writer, "%s [y/N]: ", prompt)
	var answer string
	fmt.Fscanln(c.App.Reader, &answer)
	return answer == "y" || answer == "Y"
}
