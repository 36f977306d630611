package query

import (
	"fmt"
	"strings"
)

// Key identifies a cached query: a resource kind followed by its
// parameters, separated by '/'. Zero-valued parameters render empty, so
// "tasks/7//" is project 7 with no filters.
type Key string

// NewKey renders kind and params into a Key. Integer zero and "" both mean
// "not set".
func NewKey(kind string, params ...any) Key {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range params {
		b.WriteByte('/')
		switch v := p.(type) {
		case int64:
			if v != 0 {
				fmt.Fprint(&b, v)
			}
		case int:
			if v != 0 {
				fmt.Fprint(&b, v)
			}
		case fmt.Stringer:
			b.WriteString(v.String())
		default:
			fmt.Fprint(&b, v)
		}
	}
	return Key(b.String())
}

// Kind is the first segment of k.
func (k Key) Kind() string {
	kind, _, _ := strings.Cut(string(k), "/")
	return kind
}

// HasPrefix reports whether k is p or lies under p on a segment boundary:
// "tasks/7" covers "tasks/7/DONE/" but not "tasks/70//".
func (k Key) HasPrefix(p Key) bool {
	return k == p || strings.HasPrefix(string(k), string(p)+"/")
}

// Keys used by the client. Each mirrors one backend read.
func ProjectsKey() Key                { return NewKey("projects") }
func ProjectKey(projectID int64) Key  { return NewKey("project", projectID) }
func TaskKey(taskID int64) Key        { return NewKey("task", taskID) }
func TaskSyncKey(taskID int64) Key    { return NewKey("task-sync", taskID) }
func TaskHistoryKey(taskID int64) Key { return NewKey("task-history", taskID) }
func OutboxEntryKey(entryID int64) Key { return NewKey("outbox-entry", entryID) }

// TasksKey is a project's task list under a filter. TasksPrefix covers every
// filter of that project.
func TasksKey(projectID int64, status string, assignee int64) Key {
	return NewKey("tasks", projectID, status, assignee)
}

func TasksPrefix(projectID int64) Key { return NewKey("tasks", projectID) }

func OutboxKey(status string, taskID int64) Key { return NewKey("outbox", status, taskID) }

func OutboxPrefix() Key { return NewKey("outbox") }
