package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func dateOrDash(d *models.LocalDateTime) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func idOrDash(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeProjects(w io.Writer, projects []models.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects yet.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.CreatedAt)
	}
	tw.Flush()
}

func writeProject(w io.Writer, p models.Project) {
	fmt.Fprintf(w, "Project #%d: %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "  created %s, updated %s\n", p.CreatedAt, p.UpdatedAt)
}

func writeTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks match.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tASSIGNEE\tDUE\tSYNC")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status.Label(), t.Title, orDash(t.AssigneeName), dateOrDash(t.DueAt), yesNo(t.CalendarSyncEnabled))
	}
	tw.Flush()
}

// writeTask prints the task and the moves offered from its status.
func writeTask(w io.Writer, t models.Task, busy string) {
	fmt.Fprintf(w, "Task #%d: %s\n", t.ID, t.Title)
	tw := table(w)
	fmt.Fprintf(tw, "  Project\t%d\n", t.ProjectID)
	fmt.Fprintf(tw, "  Status\t%s\n", t.Status.Label())
	fmt.Fprintf(tw, "  Assignee\t%s (%s)\n", orDash(t.AssigneeName), idOrDash(t.AssigneeUserID))
	fmt.Fprintf(tw, "  Start\t%s\n", dateOrDash(t.StartAt))
	fmt.Fprintf(tw, "  Due\t%s\n", dateOrDash(t.DueAt))
	fmt.Fprintf(tw, "  Calendar sync\t%s\n", yesNo(t.CalendarSyncEnabled))
	fmt.Fprintf(tw, "  Updated\t%s\n", t.UpdatedAt)
	tw.Flush()
	if t.Description != nil && *t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", *t.Description)
	}
	fmt.Fprintln(w)
	writeMoves(w, t.Status)
	if busy != "" {
		fmt.Fprintf(w, "(%s in progress)\n", busy)
	}
}

func writeMoves(w io.Writer, from models.TaskStatus) {
	next := models.AllowedNext(from)
	if len(next) == 0 {
		fmt.Fprintf(w, "No moves available from %s.\n", from.Label())
		return
	}
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	fmt.Fprintf(w, "Can move to: %s\n", strings.Join(names, ", "))
}

func writeHistory(w io.Writer, history []models.TaskHistory) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No changes recorded.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "WHEN\tCHANGE\tBEFORE\tAFTER\tBY")
	for _, h := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			h.CreatedAt, h.ChangeType, orDash(h.BeforeValue), orDash(h.AfterValue), h.ChangedByUserName)
	}
	tw.Flush()
}

func writeSync(w io.Writer, s models.CalendarSyncStatus) {
	fmt.Fprintf(w, "Calendar sync for task #%d\n", s.TaskID)
	tw := table(w)
	fmt.Fprintf(tw, "  Enabled\t%s\n", yesNo(s.CalendarSyncEnabled))
	fmt.Fprintf(tw, "  Event\t%s\n", orDash(s.CalendarEventID))
	last := "-"
	if s.LastOutboxStatus != nil {
		last = string(*s.LastOutboxStatus)
		if s.LastOutboxOpType != nil {
			last += " (" + string(*s.LastOutboxOpType) + ")"
		}
	}
	fmt.Fprintf(tw, "  Last outbox\t%s\n", last)
	fmt.Fprintf(tw, "  Last error\t%s\n", orDash(s.LastOutboxError))
	fmt.Fprintf(tw, "  Last synced\t%s\n", dateOrDash(s.LastSyncedAt))
	tw.Flush()
}

func writeOutbox(w io.Writer, entries []models.OutboxEntry) {
	counts := models.CountByStatus(entries)
	parts := make([]string, 0, len(models.OutboxStatuses))
	for _, s := range models.OutboxStatuses {
		parts = append(parts, fmt.Sprintf("%s %d", s, counts[s]))
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))

	if len(entries) == 0 {
		fmt.Fprintln(w, "Outbox is empty.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTASK\tOP\tSTATUS\tRETRIES\tNEXT RETRY\tLAST ERROR")
	for _, e := range entries {
		status := string(e.Status)
		if e.Exhausted() {
			status += " (gave up)"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d/%d\t%s\t%s\n",
			e.ID, e.TaskID, e.OpType, status, e.RetryCount, models.OutboxMaxRetry, dateOrDash(e.NextRetryAt), orDash(e.LastError))
	}
	tw.Flush()
}

func writeOutboxEntry(w io.Writer, e models.OutboxEntry) {
	fmt.Fprintf(w, "Outbox entry #%d (task #%d)\n", e.ID, e.TaskID)
	tw := table(w)
	fmt.Fprintf(tw, "  Operation\t%s\n", e.OpType)
	fmt.Fprintf(tw, "  Status\t%s\n", e.Status)
	fmt.Fprintf(tw, "  Retries\t%d/%d\n", e.RetryCount, models.OutboxMaxRetry)
	fmt.Fprintf(tw, "  Next retry\t%s\n", dateOrDash(e.NextRetryAt))
	fmt.Fprintf(tw, "  Last error\t%s\n", orDash(e.LastError))
	fmt.Fprintf(tw, "  Created\t%s\n", e.CreatedAt)
	tw.Flush()
	fmt.Fprintf(w, "\nPayload:\n%s\n", e.PrettyPayload())
}
