package models

import (
	"bytes"
	"encoding/json"
)

// OutboxMaxRetry mirrors the backend's retry ceiling. A FAILED entry with
// this many retries will not be picked up again.
const OutboxMaxRetry = 6

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxProcessing OutboxStatus = "PROCESSING"
	OutboxSuccess    OutboxStatus = "SUCCESS"
	OutboxFailed     OutboxStatus = "FAILED"
)

var OutboxStatuses = []OutboxStatus{OutboxPending, OutboxProcessing, OutboxSuccess, OutboxFailed}

type OutboxOpType string

const (
	OutboxUpsert OutboxOpType = "UPSERT"
	OutboxDelete OutboxOpType = "DELETE"
)

type OutboxEntry struct {
	ID          int64          `json:"id"`
	TaskID      int64          `json:"taskId"`
	OpType      OutboxOpType   `json:"opType"`
	Status      OutboxStatus   `json:"status"`
	RetryCount  int            `json:"retryCount"`
	NextRetryAt *LocalDateTime `json:"nextRetryAt"`
	LastError   *string        `json:"lastError"`
	Payload     string         `json:"payload"`
	CreatedAt   LocalDateTime  `json:"createdAt"`
	UpdatedAt   LocalDateTime  `json:"updatedAt"`
}

// Exhausted reports whether the worker has given up on e.
func (e OutboxEntry) Exhausted() bool {
	return e.Status == OutboxFailed && e.RetryCount >= OutboxMaxRetry
}

// PrettyPayload indents the JSON payload, or returns it unchanged when it
// is not JSON.
func (e OutboxEntry) PrettyPayload() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(e.Payload), "", "  "); err != nil {
		return e.Payload
	}
	return buf.String()
}

// OutboxFilter narrows the outbox list. Zero values mean "any".
type OutboxFilter struct {
	Status OutboxStatus
	TaskID int64
}

// CountByStatus tallies entries per status; every status is present.
func CountByStatus(entries []OutboxEntry) map[OutboxStatus]int {
	counts := make(map[OutboxStatus]int, len(OutboxStatuses))
	for _, s := range OutboxStatuses {
		counts[s] = 0
	}
	for _, e := range entries {
		counts[e.Status]++
	}
	return counts
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
