package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseDate(flag, v string) (*models.LocalDateTime, error) {
	d, err := models.ParseLocalDateTime(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}

// NewRootCommand builds the taskflow command tree bound to a.
func NewRootCommand(a *App) *cobra.Command {
	root := newCommandTree(a)
	root.AddCommand(shellCmd(a))
	return root
}

// newCommandTree builds every command except shell, which is also the set
// available inside the shell.
func newCommandTree(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "taskflow - projects, tasks and calendar sync from the terminal",
		Long: `taskflow talks to the taskflow backend: browse projects, manage tasks and
their status, and inspect the calendar sync outbox.

Global flags (-a, -c, -d, -s, -r, -i, -l, -f) are read by the config loader
before the command runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.AddCommand(loginCmd(a), logoutCmd(a), statusCmd(a))
	root.AddCommand(projectsCmd(a), tasksCmd(a), outboxCmd(a), metricsCmd(a))
	return root
}

func loginCmd(a *App) *cobra.Command {
	var (
		credential string
		wait       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser, or with --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.Login(cmd.Context(), credential, wait))
		},
	}
	cmd.Flags().StringVar(&credential, "token", "", "use this credential instead of the browser flow")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Minute, "how long to wait for the browser redirect")
	return cmd
}

func logoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.Logout(cmd.Context()))
		},
	}
}

func statusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, backend and cache status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.Status(cmd.Context()))
		},
	}
}

func metricsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print client metrics in Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.PrintMetrics(cmd.Context()))
		},
	}
}

func projectsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{Use: "projects", Short: "Browse and create projects"}

	var refresh bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.ListProjects(cmd.Context(), refresh))
		},
	}
	list.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	show := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.ShowProject(cmd.Context(), id))
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.report(cmd.Context(), a.CreateProject(cmd.Context(), strings.Join(args, " ")))
		},
	}

	cmd.AddCommand(list, show, create)
	return cmd
}

func tasksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Manage tasks"}
	cmd.AddCommand(
		tasksListCmd(a), tasksShowCmd(a), tasksCreateCmd(a), tasksUpdateCmd(a),
		tasksDeleteCmd(a), tasksMoveCmd(a), tasksHistoryCmd(a), tasksSyncCmd(a),
	)
	return cmd
}

func tasksListCmd(a *App) *cobra.Command {
	var (
		projectID int64
		status    string
		assignee  int64
		refresh   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f := models.TaskFilter{AssigneeUserID: assignee}
			if status != "" {
				s, err := models.ParseTaskStatus(status)
				if err != nil {
					return a.report(ctx, err)
				}
				f.Status = s
			}
			return a.report(ctx, a.ListTasks(ctx, projectID, f, refresh))
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "project id")
	cmd.Flags().StringVar(&status, "status", "", "only tasks in this status")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "only tasks assigned to this user id")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func tasksShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task and the moves it offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.ShowTask(cmd.Context(), id))
		},
	}
}

func tasksCreateCmd(a *App) *cobra.Command {
	var (
		projectID          int64
		title, description string
		assignee           int64
		start, due         string
		sync               bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := models.TaskCreateRequest{Title: title, Description: description, CalendarSyncEnabled: sync}
			if assignee > 0 {
				req.AssigneeUserID = &assignee
			}
			var err error
			if start != "" {
				if req.StartAt, err = parseDate("start", start); err != nil {
					return a.report(ctx, err)
				}
			}
			if due != "" {
				if req.DueAt, err = parseDate("due", due); err != nil {
					return a.report(ctx, err)
				}
			}
			return a.report(ctx, a.CreateTask(ctx, projectID, req))
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "project id")
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title (prompted when empty)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "assignee user id")
	cmd.Flags().StringVar(&start, "start", "", "start, e.g. 2026-03-01T09:00")
	cmd.Flags().StringVar(&due, "due", "", "due, e.g. 2026-03-01T17:00")
	cmd.Flags().BoolVar(&sync, "sync", false, "sync the task to the calendar (needs --due)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func tasksUpdateCmd(a *App) *cobra.Command {
	var (
		title, description string
		assignee           int64
		start, due         string
		sync               bool
	)
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change task fields; only the flags given are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return a.report(ctx, err)
			}

			var req models.TaskUpdateRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("assignee") {
				req.AssigneeUserID = &assignee
			}
			if flags.Changed("start") {
				if req.StartAt, err = parseDate("start", start); err != nil {
					return a.report(ctx, err)
				}
			}
			if flags.Changed("due") {
				if req.DueAt, err = parseDate("due", due); err != nil {
					return a.report(ctx, err)
				}
			}
			if flags.Changed("sync") {
				req.CalendarSyncEnabled = &sync
			}
			return a.report(ctx, a.UpdateTask(ctx, id, req))
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "new assignee user id")
	cmd.Flags().StringVar(&start, "start", "", "new start")
	cmd.Flags().StringVar(&due, "due", "", "new due")
	cmd.Flags().BoolVar(&sync, "sync", false, "calendar sync on or off")
	return cmd
}

func tasksDeleteCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.DeleteTask(cmd.Context(), id, yes))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func tasksMoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> [status]",
		Short: "Change the task status; without a status, list the offered moves",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			return a.report(cmd.Context(), a.MoveTask(cmd.Context(), id, target))
		},
	}
}

func tasksHistoryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <task-id>",
		Short: "Show the change history of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.TaskHistory(cmd.Context(), id))
		},
	}
}

func tasksSyncCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <task-id>",
		Short: "Show the calendar sync status of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.TaskSync(cmd.Context(), id))
		},
	}
}

func outboxCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{Use: "outbox", Short: "Inspect the calendar sync outbox"}

	var (
		status  string
		taskID  int64
		refresh bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List outbox entries with per-status counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f := models.OutboxFilter{Status: models.OutboxStatus(strings.ToUpper(status)), TaskID: taskID}
			return a.report(ctx, a.ListOutbox(ctx, f, refresh))
		},
	}
	list.Flags().StringVar(&status, "status", "", "PENDING, PROCESSING, SUCCESS or FAILED")
	list.Flags().Int64Var(&taskID, "task", 0, "only entries of this task")
	list.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	show := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show one outbox entry with its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.report(cmd.Context(), err)
			}
			return a.report(cmd.Context(), a.ShowOutbox(cmd.Context(), id))
		},
	}

	trigger := &cobra.Command{
		Use:   "trigger",
		Short: "Run one outbox worker pass now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(cmd.Context(), a.TriggerOutbox(cmd.Context()))
		},
	}

	cmd.AddCommand(list, show, trigger)
	return cmd
}
