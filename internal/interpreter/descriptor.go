// Package interpreter turns free-text task commands into action descriptors.
//
// Two interpreters produce descriptors: a Gemini-backed LLMInterpreter and a
// deterministic PatternInterpreter it falls back to. The descriptor is the
// only channel between interpretation and execution: the dispatcher never
// inspects raw command text, and the task service only ever receives the
// same typed requests the REST handlers use.
package interpreter

// Action identifies the operation a command descriptor requests.
type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdateState Action = "update_state"
	ActionUpdateTask  Action = "update_task"
	ActionDelete      Action = "delete"
	ActionList        Action = "list"
	ActionChat        Action = "chat"
)

// Message kinds for ActionChat, selecting a canned response.
const (
	MessageGreeting = "greeting"
	MessageHelp     = "help"
	MessageGeneral  = "general"
	MessageUnclear  = "unclear"
)

// Descriptor is the normalized intermediate representation of one user
// intent. A zero-value field (empty string, nil pointer) means "not
// specified"; the Normalizer drops unusable values back to the zero value
// rather than passing them through, so downstream code can treat presence
// as meaningful.
type Descriptor struct {
	Action Action `json:"action"`

	// TaskTitle is the new task's title on create, or the fuzzy-match key
	// on update_state/update_task/delete.
	TaskTitle string `json:"task_title,omitempty"`

	NewState       string `json:"new_state,omitempty"`
	NewTitle       string `json:"new_title,omitempty"`
	NewDescription string `json:"new_description,omitempty"`
	Description    string `json:"description,omitempty"`

	ScheduledDate string `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time,omitempty"` // HH:MM
	DueDate       string `json:"due_date,omitempty"`       // YYYY-MM-DD
	DueTime       string `json:"due_time,omitempty"`       // HH:MM
	ReminderTime  *int   `json:"reminder_time,omitempty"`  // minutes before due

	Priority string `json:"priority,omitempty"` // LOW|MEDIUM|HIGH|URGENT
	Category string `json:"category,omitempty"`

	DateFilter     string `json:"date_filter,omitempty"`
	StateFilter    string `json:"state_filter,omitempty"`
	CategoryFilter string `json:"category_filter,omitempty"`

	// Message selects the canned reply for ActionChat.
	Message string `json:"message,omitempty"`

	// Confidence is advisory parser certainty in [0,1]. Nothing gates on it
	// today; it is carried for future consumers.
	Confidence float64 `json:"confidence,omitempty"`
}
