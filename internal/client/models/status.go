package models

import (
	"fmt"
	"slices"
	"strings"
)

type TaskStatus string

const (
	StatusRequested  TaskStatus = "REQUESTED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusBlocked    TaskStatus = "BLOCKED"
)

// Statuses lists every status in display order.
var Statuses = []TaskStatus{StatusRequested, StatusInProgress, StatusDone, StatusBlocked}

// transitions is advisory. The backend decides; the client only uses it to
// decide which moves to offer.
var transitions = map[TaskStatus][]TaskStatus{
	StatusRequested:  {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusDone, StatusBlocked},
	StatusBlocked:    {StatusInProgress},
	StatusDone:       {},
}

var labels = map[TaskStatus]string{
	StatusRequested:  "Requested",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
	StatusBlocked:    "Blocked",
}

// AllowedNext returns the statuses a task in s may move to. Unknown statuses
// have no successors. The result is a copy.
func AllowedNext(s TaskStatus) []TaskStatus {
	return slices.Clone(transitions[s])
}

// CanTransition reports whether the table offers a move from -> to.
func CanTransition(from, to TaskStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Label is the human-readable form of s.
func (s TaskStatus) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

func (s TaskStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseTaskStatus accepts the wire form in any case, with '-' or ' ' in
// place of '_'.
func ParseTaskStatus(v string) (TaskStatus, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(strings.TrimSpace(v)))
	s := TaskStatus(norm)
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", v)
	}
	return s, nil
}
