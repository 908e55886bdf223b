// Package task defines the Task domain entity and its state workflow.
package task

import (
	"fmt"
	"strings"
	"time"
)

// State represents the workflow state of a task.
//
// Transitions are strictly linear: Not Started -> In Progress -> Completed.
// Completed is terminal.
type State string

const (
	StateNotStarted State = "Not Started"
	StateInProgress State = "In Progress"
	StateCompleted  State = "Completed"
)

// stateTransitions is the single canonical adjacency map for the workflow.
// Both the command dispatcher's pre-check and the task service's
// authoritative check consult this table; there is no second copy.
var stateTransitions = map[State][]State{
	StateNotStarted: {StateInProgress},
	StateInProgress: {StateCompleted},
	StateCompleted:  {},
}

// ParseState converts a state label into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateNotStarted, StateInProgress, StateCompleted:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown task state %q", s)
}

// ValidTransitions returns the states reachable from s.
func (s State) ValidTransitions() []State {
	return stateTransitions[s]
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range stateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// States returns all workflow states in order.
func States() []State {
	return []State{StateNotStarted, StateInProgress, StateCompleted}
}

// Priority represents task priority, canonically uppercase.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ParsePriority converts a priority label (case-insensitive) into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToUpper(s)) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// Task represents a single planned item owned by one user.
//
// ScheduledDate/DueDate are ISO calendar dates (YYYY-MM-DD) and
// ScheduledTime/DueTime are 24-hour HH:MM strings; both are optional.
// ReminderTime is minutes before the due time; it is stored only and never
// triggers anything in this service.
type Task struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	State         State     `json:"state"`
	Priority      Priority  `json:"priority"`
	Category      string    `json:"category,omitempty"`
	ScheduledDate string    `json:"scheduled_date,omitempty"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	DueDate       string    `json:"due_date,omitempty"`
	DueTime       string    `json:"due_time,omitempty"`
	ReminderTime  *int      `json:"reminder_time,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
// State is deliberately absent: a task always starts in Not Started.
type CreateRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Priority      Priority `json:"priority,omitempty"`
	Category      string   `json:"category,omitempty"`
	ScheduledDate string   `json:"scheduled_date,omitempty"`
	ScheduledTime string   `json:"scheduled_time,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	DueTime       string   `json:"due_time,omitempty"`
	ReminderTime  *int     `json:"reminder_time,omitempty"`
}

// Validate checks the request fields that must hold before persistence.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.Priority != "" {
		if _, err := ParsePriority(string(r.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRequest holds the optional replacement fields for a task update.
// Nil pointers mean "leave unchanged".
type UpdateRequest struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	State         *State    `json:"state,omitempty"`
	Priority      *Priority `json:"priority,omitempty"`
	Category      *string   `json:"category,omitempty"`
	ScheduledDate *string   `json:"scheduled_date,omitempty"`
	ScheduledTime *string   `json:"scheduled_time,omitempty"`
	DueDate       *string   `json:"due_date,omitempty"`
	DueTime       *string   `json:"due_time,omitempty"`
	ReminderTime  *int      `json:"reminder_time,omitempty"`
}
