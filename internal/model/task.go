package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrEmptyTitle      = errors.New("model: task title is required")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusInProgress, StatusPending, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"due_date"`
	UserID      int64    `json:"user_id"`
	Tags        []Tag    `json:"tags"`
}

// TaskInput is the create/update body. Tags travel as ids.
type TaskInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"due_date"`
	TagIDs      []int64  `json:"tag_ids"`
}

func NewTask() Task {
	return Task{
		Status:   StatusPending,
		Priority: PriorityMedium,
		Tags:     []Tag{},
	}
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return nil
}

// Input converts the task into the wire body. An empty description is sent
// as null.
func (t Task) Input() TaskInput {
	var desc *string
	if t.Description != nil && *t.Description != "" {
		d := *t.Description
		desc = &d
	}
	return TaskInput{
		Title:       t.Title,
		Description: desc,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		TagIDs:      TagIDs(t.Tags),
	}
}

// WithStatus returns a copy with the status replaced; used by the
// completed checkbox which flips between completed and pending.
func (t Task) WithStatus(s Status) Task {
	t.Status = s
	t.Tags = append([]Tag(nil), t.Tags...)
	return t
}

func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
