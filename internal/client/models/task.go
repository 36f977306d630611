package models

type Task struct {
	ID                  int64          `json:"id"`
	ProjectID           int64          `json:"projectId"`
	Title               string         `json:"title"`
	Description         *string        `json:"description"`
	Status              TaskStatus     `json:"status"`
	AssigneeUserID      *int64         `json:"assigneeUserId"`
	AssigneeName        *string        `json:"assigneeName"`
	StartAt             *LocalDateTime `json:"startAt"`
	DueAt               *LocalDateTime `json:"dueAt"`
	CalendarSyncEnabled bool           `json:"calendarSyncEnabled"`
	CalendarEventID     *string        `json:"calendarEventId"`
	CreatedAt           LocalDateTime  `json:"createdAt"`
	UpdatedAt           LocalDateTime  `json:"updatedAt"`
}

// TaskFilter narrows a project's task list. Zero values mean "any".
type TaskFilter struct {
	Status         TaskStatus
	AssigneeUserID int64
}

type TaskCreateRequest struct {
	Title               string         `json:"title" validate:"notblank,max=200"`
	Description         string         `json:"description,omitempty"`
	AssigneeUserID      *int64         `json:"assigneeUserId,omitempty"`
	StartAt             *LocalDateTime `json:"startAt,omitempty"`
	DueAt               *LocalDateTime `json:"dueAt,omitempty"`
	CalendarSyncEnabled bool           `json:"calendarSyncEnabled"`
}

// TaskUpdateRequest is a partial update; nil fields are left unchanged.
type TaskUpdateRequest struct {
	Title               *string        `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Description         *string        `json:"description,omitempty"`
	AssigneeUserID      *int64         `json:"assigneeUserId,omitempty"`
	StartAt             *LocalDateTime `json:"startAt,omitempty"`
	DueAt               *LocalDateTime `json:"dueAt,omitempty"`
	CalendarSyncEnabled *bool          `json:"calendarSyncEnabled,omitempty"`
}

// Empty reports whether the update would change nothing.
func (r TaskUpdateRequest) Empty() bool {
	return r == TaskUpdateRequest{}
}

// NeedsCurrent reports whether the schedule rules can only be checked
// against the task as it is now: sync is switched on without a due date in
// the request, or only one end of the schedule changes.
func (r TaskUpdateRequest) NeedsCurrent() bool {
	syncOn := r.CalendarSyncEnabled != nil && *r.CalendarSyncEnabled
	return (syncOn && r.DueAt == nil) || ((r.StartAt == nil) != (r.DueAt == nil))
}

// Over returns r with the schedule fields it leaves unchanged taken from
// cur. The result is for validation only; r is what gets sent.
func (r TaskUpdateRequest) Over(cur Task) TaskUpdateRequest {
	if r.StartAt == nil {
		r.StartAt = cur.StartAt
	}
	if r.DueAt == nil {
		r.DueAt = cur.DueAt
	}
	return r
}

type ChangeTaskStatusRequest struct {
	ToStatus TaskStatus `json:"toStatus" validate:"required"`
}

type DeleteTaskResponse struct {
	DeletedTaskID int64 `json:"deletedTaskId"`
}

type TaskChangeType string

const (
	ChangeStatus   TaskChangeType = "STATUS"
	ChangeAssignee TaskChangeType = "ASSIGNEE"
	ChangeSchedule TaskChangeType = "SCHEDULE"
	ChangeContent  TaskChangeType = "CONTENT"
)

type TaskHistory struct {
	ChangeType        TaskChangeType `json:"changeType"`
	BeforeValue       *string        `json:"beforeValue"`
	AfterValue        *string        `json:"afterValue"`
	ChangedByUserName string         `json:"changedByUserName"`
	CreatedAt         LocalDateTime  `json:"createdAt"`
}

type CalendarSyncStatus struct {
	TaskID              int64          `json:"taskId"`
	CalendarSyncEnabled bool           `json:"calendarSyncEnabled"`
	CalendarEventID     *string        `json:"calendarEventId"`
	LastOutboxStatus    *OutboxStatus  `json:"lastOutboxStatus"`
	LastOutboxOpType    *OutboxOpType  `json:"lastOutboxOpType"`
	LastOutboxError     *string        `json:"lastOutboxError"`
	LastSyncedAt        *LocalDateTime `json:"lastSyncedAt"`
	LastOutboxCreatedAt *LocalDateTime `json:"lastOutboxCreatedAt"`
}
