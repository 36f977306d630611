// Package models defines the taskflow domain types as the backend serves
// them, the task status transition table, and local form validation.
package models
