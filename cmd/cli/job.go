package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
)

func jobCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage async scan jobs",
		Long: `Submit and inspect async scan jobs. Jobs are stored in Postgres and
dispatched over NATS; when NATS is unreachable they are still queued and
picked up by worker polling. Connection settings come from DATABASE_URL
and NATS_URL.

Examples:
  coderef job submit --url https://github.com/acme/webapp
  coderef job list --status pending
  coderef job status 4f9c1e2a-...
  coderef job retry 4f9c1e2a-...`,
	}

	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of tables")

	cmd.AddCommand(jobSubmitCmd(&jsonOut))
	cmd.AddCommand(jobListCmd(&jsonOut))
	cmd.AddCommand(jobStatusCmd(&jsonOut))
	cmd.AddCommand(jobCancelCmd())
	cmd.AddCommand(jobRetryCmd())

	return cmd
}

// jobSystem bundles the connections the job subcommands need. The store
// runs on pgx pools, the job repository on database/sql, matching how the
// API and workers are wired.
type jobSystem struct {
	store    *db.Store
	repo     *jobs.Repository
	pipeline *jobs.Pipeline
	close    func()
}

func openJobSystem(ctx context.Context) (*jobSystem, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pgdb, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		pgdb.Close()
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}

	var nc *coderefnats.Client
	if c, err := coderefnats.NewClient(cfg.NATSURL); err != nil {
		log.Debug().Err(err).Msg("NATS unavailable, queued jobs will be picked up by worker polling")
	} else {
		nc = c
	}

	repo := jobs.NewRepository(sqlDB)
	return &jobSystem{
		store:    db.NewStore(pgdb),
		repo:     repo,
		pipeline: jobs.NewPipeline(repo, nc),
		close: func() {
			if nc != nil {
				nc.Close()
			}
			sqlDB.Close()
			pgdb.Close()
		},
	}, nil
}

func jobSubmitCmd(jsonOut *bool) *cobra.Command {
	var (
		projectID string
		url       string
		branch    string
		languages []string
		noGraph   bool
		noReports bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a scan for a registered project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			sys, err := openJobSystem(ctx)
			if err != nil {
				return err
			}
			defer sys.close()

			project, err := resolveProject(ctx, sys.store, projectID, url)
			if err != nil {
				return err
			}

			scan := &db.Scan{ProjectID: project.ID, Status: "pending"}
			if err := sys.store.CreateScan(ctx, scan); err != nil {
				return fmt.Errorf("failed to create scan: %w", err)
			}

			payload := jobs.ScanPayload{
				ProjectID:       project.ID,
				ScanID:          scan.ID,
				RepositoryURL:   project.URL,
				Branch:          branch,
				Languages:       languages,
				BuildGraph:      !noGraph,
				GenerateReports: !noReports,
			}
			if payload.Branch == "" {
				payload.Branch = project.DefaultBranch
			}
			if len(payload.Languages) == 0 {
				payload.Languages = project.Languages
			}
			if project.LocalPath != nil {
				payload.LocalPath = *project.LocalPath
			}

			job, err := sys.pipeline.StartScan(ctx, payload)
			if err != nil {
				return fmt.Errorf("failed to start scan: %w", err)
			}

			if *jsonOut {
				return printJSON(job)
			}
			fmt.Printf("🚀 Scan queued for %s\n", project.Name)
			fmt.Printf("  Scan: %s\n", scan.ID)
			fmt.Printf("  Job:  %s\n", job.ID)
			fmt.Printf("\nCheck progress with: coderef job status %s\n", job.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID to scan")
	cmd.Flags().StringVar(&url, "url", "", "Project repository URL (alternative to --project)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to check out (default project branch)")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Language selectors (default project languages)")
	cmd.Flags().BoolVar(&noGraph, "no-graph", false, "Skip the graph build after the scan")
	cmd.Flags().BoolVar(&noReports, "no-reports", false, "Skip report generation after the graph")

	return cmd
}

func resolveProject(ctx context.Context, store *db.Store, idStr, url string) (*db.Project, error) {
	switch {
	case idStr != "":
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid project ID: %s", idStr)
		}
		project, err := store.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("project not found: %s", idStr)
		}
		return project, nil
	case url != "":
		project, err := store.GetProjectByURL(ctx, url)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("project not registered: %s", url)
		}
		return project, nil
	default:
		return nil, fmt.Errorf("either --project or --url is required")
	}
}

func jobListCmd(jsonOut *bool) *cobra.Command {
	var (
		status  string
		jobType string
		limit   int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			sys, err := openJobSystem(ctx)
			if err != nil {
				return err
			}
			defer sys.close()

			var list []*jobs.Job
			switch {
			case status != "":
				list, err = sys.repo.ListByStatus(ctx, jobs.JobStatus(status), limit)
			case jobType != "":
				list, err = sys.repo.ListPendingByType(ctx, jobs.JobType(jobType), limit)
			default:
				list, err = sys.repo.ListRecent(ctx, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			if *jsonOut {
				return printJSON(list)
			}
			if len(list) == 0 {
				fmt.Println("No jobs found")
				return nil
			}
			printJobTable(list)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (pending, running, completed, failed, retrying, cancelled)")
	cmd.Flags().StringVarP(&jobType, "type", "t", "", "List pending jobs of one type (scan, graph, report)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to list")

	return cmd
}

func jobStatusCmd(jsonOut *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a job and its chained children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job ID: %s", args[0])
			}
			ctx := context.Background()

			sys, err := openJobSystem(ctx)
			if err != nil {
				return err
			}
			defer sys.close()

			status, err := sys.pipeline.GetJobStatus(ctx, id)
			if err != nil {
				return err
			}

			if *jsonOut {
				return printJSON(status)
			}
			printJobDetail(status.Job)
			if len(status.Children) > 0 {
				fmt.Println("\nChained jobs:")
				printJobTable(status.Children)
			}
			return nil
		},
	}
}

func jobCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending or retrying job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job ID: %s", args[0])
			}
			ctx := context.Background()

			sys, err := openJobSystem(ctx)
			if err != nil {
				return err
			}
			defer sys.close()

			if err := sys.repo.Cancel(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Cancelled job %s\n", id)
			return nil
		},
	}
}

func jobRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Requeue a failed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job ID: %s", args[0])
			}
			ctx := context.Background()

			sys, err := openJobSystem(ctx)
			if err != nil {
				return err
			}
			defer sys.close()

			if err := sys.repo.Retry(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Requeued job %s\n", id)
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printJobTable(list []*jobs.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tRETRIES\tCREATED\tWORKER")
	for _, j := range list {
		worker := "-"
		if j.WorkerID != nil {
			worker = *j.WorkerID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			shortID(j.ID), j.Type, j.Status, j.RetryCount, j.MaxRetries,
			j.CreatedAt.Format("2006-01-02 15:04:05"), worker)
	}
	w.Flush()
}

func printJobDetail(j *jobs.Job) {
	fmt.Printf("Job %s\n", j.ID)
	fmt.Printf("  Type:    %s\n", j.Type)
	fmt.Printf("  Status:  %s\n", j.Status)
	fmt.Printf("  Retries: %d/%d\n", j.RetryCount, j.MaxRetries)
	fmt.Printf("  Created: %s\n", j.CreatedAt.Format("2006-01-02 15:04:05"))
	if j.StartedAt != nil {
		fmt.Printf("  Started: %s\n", j.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if j.CompletedAt != nil {
		fmt.Printf("  Done:    %s\n", j.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if j.WorkerID != nil {
		fmt.Printf("  Worker:  %s\n", *j.WorkerID)
	}
	if j.ErrorMessage != nil {
		fmt.Printf("  Error:   %s\n", *j.ErrorMessage)
	}
}

// shortID truncates a UUID for table display.
func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
