package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ldt(t *testing.T, s string) *LocalDateTime {
	t.Helper()
	d, err := ParseLocalDateTime(s)
	require.NoError(t, err)
	return &d
}

func TestValidate_TaskCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     TaskCreateRequest
		problem string
	}{
		{name: "ok", req: TaskCreateRequest{Title: "Write report"}},
		{name: "blank title", req: TaskCreateRequest{Title: "   "}, problem: "title is required"},
		{
			name:    "sync without due",
			req:     TaskCreateRequest{Title: "x", CalendarSyncEnabled: true},
			problem: CodeCalendarSyncRequiresDueAt.Message(),
		},
		{
			name: "sync with due",
			req:  TaskCreateRequest{Title: "x", CalendarSyncEnabled: true, DueAt: ldt(t, "2025-01-02")},
		},
		{
			name:    "start after due",
			req:     TaskCreateRequest{Title: "x", StartAt: ldt(t, "2025-01-03"), DueAt: ldt(t, "2025-01-02")},
			problem: CodeScheduleInvalid.Message(),
		},
		{
			name: "start equals due",
			req:  TaskCreateRequest{Title: "x", StartAt: ldt(t, "2025-01-02"), DueAt: ldt(t, "2025-01-02")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.problem == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Problems, tt.problem)
		})
	}
}

func TestValidate_TaskUpdate(t *testing.T) {
	require.NoError(t, Validate(TaskUpdateRequest{}))

	blank := ""
	require.ErrorIs(t, Validate(TaskUpdateRequest{Title: &blank}), ErrValidation)

	on := true
	require.ErrorIs(t, Validate(TaskUpdateRequest{CalendarSyncEnabled: &on}), ErrValidation)
	require.NoError(t, Validate(TaskUpdateRequest{CalendarSyncEnabled: &on, DueAt: ldt(t, "2025-05-01T10:00:00")}))
}

func TestValidate_Project(t *testing.T) {
	require.NoError(t, Validate(ProjectCreateRequest{Name: "Launch"}))
	require.ErrorIs(t, Validate(ProjectCreateRequest{Name: ""}), ErrValidation)
}

func TestTaskUpdateRequest_NeedsCurrent(t *testing.T) {
	on, off := true, false
	title := "x"
	d := ldt(t, "2025-03-10")

	assert.True(t, TaskUpdateRequest{CalendarSyncEnabled: &on}.NeedsCurrent())
	assert.True(t, TaskUpdateRequest{StartAt: d}.NeedsCurrent())
	assert.True(t, TaskUpdateRequest{DueAt: d}.NeedsCurrent())
	assert.False(t, TaskUpdateRequest{CalendarSyncEnabled: &on, StartAt: d, DueAt: d}.NeedsCurrent())
	assert.False(t, TaskUpdateRequest{CalendarSyncEnabled: &off}.NeedsCurrent())
	assert.False(t, TaskUpdateRequest{Title: &title}.NeedsCurrent())
}

func TestTaskUpdateRequest_OverKeepsRequestedFields(t *testing.T) {
	start, due, newDue := ldt(t, "2025-03-01"), ldt(t, "2025-03-10"), ldt(t, "2025-03-20")
	cur := Task{StartAt: start, DueAt: due}

	got := TaskUpdateRequest{DueAt: newDue}.Over(cur)
	assert.Equal(t, start, got.StartAt)
	assert.Equal(t, newDue, got.DueAt)

	got = TaskUpdateRequest{}.Over(Task{})
	assert.Nil(t, got.StartAt)
	assert.Nil(t, got.DueAt)
}
