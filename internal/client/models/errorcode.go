package models

// ErrorCode is the backend's machine-readable error code.
type ErrorCode string

const (
	CodeValidation                ErrorCode = "VALIDATION_ERROR"
	CodeScheduleInvalid           ErrorCode = "SCHEDULE_INVALID"
	CodeCalendarSyncRequiresDueAt ErrorCode = "CALENDAR_SYNC_REQUIRES_DUE_AT"
	CodeTransitionNotAllowed      ErrorCode = "TASK_STATUS_TRANSITION_NOT_ALLOWED"
	CodeTaskNotFound              ErrorCode = "TASK_NOT_FOUND"
	CodeProjectNotFound           ErrorCode = "PROJECT_NOT_FOUND"
	CodeUserNotFound              ErrorCode = "USER_NOT_FOUND"
	CodeInternal                  ErrorCode = "INTERNAL_SERVER_ERROR"
)

var codeMessages = map[ErrorCode]string{
	CodeValidation:                "The request is invalid.",
	CodeScheduleInvalid:           "Start time must not be after the due time.",
	CodeCalendarSyncRequiresDueAt: "Calendar sync needs a due date.",
	CodeTransitionNotAllowed:      "That status change is not allowed.",
	CodeTaskNotFound:              "Task not found.",
	CodeProjectNotFound:           "Project not found.",
	CodeUserNotFound:              "User not found.",
	CodeInternal:                  "The server failed to handle the request.",
}

// Message returns a user-facing description of c, or "" for unknown codes.
func (c ErrorCode) Message() string {
	return codeMessages[c]
}
