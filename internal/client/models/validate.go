package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrValidation is matched by every local validation failure.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the problems found in one form.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// struct-level tags
const (
	tagRequiresDueAt = "requires_due_at"
	tagSchedule      = "schedule"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterStructValidation(createTaskRules, TaskCreateRequest{})
		v.RegisterStructValidation(updateTaskRules, TaskUpdateRequest{})
		validate = v
	})
	return validate
}

func createTaskRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(TaskCreateRequest)
	scheduleRules(sl, r.CalendarSyncEnabled, r.StartAt, r.DueAt)
}

func updateTaskRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(TaskUpdateRequest)
	scheduleRules(sl, r.CalendarSyncEnabled != nil && *r.CalendarSyncEnabled, r.StartAt, r.DueAt)
}

func scheduleRules(sl validator.StructLevel, syncEnabled bool, start, due *LocalDateTime) {
	if syncEnabled && due == nil {
		sl.ReportError(due, "DueAt", "dueAt", tagRequiresDueAt, "")
	}
	if start != nil && due != nil && start.After(due.Time) {
		sl.ReportError(start, "StartAt", "startAt", tagSchedule, "")
	}
}

// Validate checks a request struct before it is sent. Failures wrap
// ErrValidation and never reach the network.
func Validate(req any) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	problems := make([]string, 0, len(ve))
	for _, fe := range ve {
		problems = append(problems, fieldError(fe))
	}
	return &ValidationError{Problems: problems}
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case tagRequiresDueAt:
		return CodeCalendarSyncRequiresDueAt.Message()
	case tagSchedule:
		return CodeScheduleInvalid.Message()
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
