package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	dpotel "github.com/dayplanhq/dayplan/internal/adapter/otel"
	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/interpreter"
)

// CommandInterpreter turns free text into an action descriptor. It never
// fails; unusable input comes back as a chat descriptor.
type CommandInterpreter interface {
	Parse(ctx context.Context, text string) interpreter.Descriptor
}

// CommandResult is the outcome of one natural language command.
type CommandResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Action  interpreter.Action `json:"action,omitempty"`
	TaskID  string             `json:"task_id,omitempty"`
	Tasks   []task.Task        `json:"tasks,omitempty"`
}

// Canned replies for chat descriptors.
const (
	replyGreeting = "Hello! I'm your personal day planner assistant. I can help you:\n\n📅 **Schedule Tasks:**\n• 'Schedule meeting tomorrow at 3pm'\n• 'Plan study session for today at 8pm'\n• 'Remind me to call John at 2pm'\n\n📋 **Manage Tasks:**\n• 'Show my schedule for today'\n• 'What's on my agenda tomorrow?'\n• 'Mark presentation as completed'\n\n⏰ **Set Reminders:**\n• 'Remind me 30 minutes before the meeting'\n• 'Set reminder for doctor appointment'\n\nHow can I help organize your day?"

	replyHelp = "I'm your AI day planner! Here's how I can help:\n\n📅 **Scheduling:**\n• 'Schedule meeting tomorrow at 3pm'\n• 'Plan workout for today morning'\n• 'Book dentist appointment Friday 2pm'\n\n⏰ **Time Management:**\n• 'Show my schedule for today'\n• 'What's due tomorrow?'\n• 'List urgent tasks'\n\n🔔 **Reminders:**\n• 'Remind me 15 minutes before meeting'\n• 'Set reminder for grocery shopping'\n\n✅ **Task Updates:**\n• 'Start working on presentation'\n• 'Complete the research task'\n• 'Delete old appointment'\n\n🏷️ **Categories & Priorities:**\n• 'Add high priority work task'\n• 'Create personal reminder'\n\nJust tell me what you need to plan or organize!"

	replyGeneral = "I'm your personal task assistant! I can help you create, manage, and track your tasks. Try asking me to:\n\n• 'Add a new task'\n• 'Show my current tasks'\n• 'Mark a task as done'\n\nWhat would you like me to help you with?"

	replyUnknown = "I couldn't understand what you want to do. Try commands like 'create task', 'start task', 'complete task', or 'show tasks'."
)

// CommandService executes natural language commands. It only interprets
// intent and builds the same typed requests the REST handlers use; all
// business rules live in TaskService and cannot be bypassed from here.
type CommandService struct {
	tasks   *TaskService
	interp  CommandInterpreter
	metrics *dpotel.Metrics

	now func() time.Time // for testing
}

// NewCommandService creates a new CommandService. metrics may be nil.
func NewCommandService(tasks *TaskService, interp CommandInterpreter, metrics *dpotel.Metrics) *CommandService {
	return &CommandService{
		tasks:   tasks,
		interp:  interp,
		metrics: metrics,
		now:     time.Now,
	}
}

// Process interprets one command and executes it on behalf of userID.
// It never returns an error: every failure mode, including a panic in the
// pipeline, degrades to an unsuccessful result with a readable message.
func (s *CommandService) Process(ctx context.Context, command, userID string) (result CommandResult) {
	ctx, span := dpotel.StartCommandSpan(ctx, userID)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while processing command", "panic", r)
			result = CommandResult{Success: false, Message: "Sorry, I couldn't process that command."}
		}
		if s.metrics != nil {
			s.metrics.CommandsProcessed.Add(ctx, 1, metric.WithAttributes(
				attribute.String("action", string(result.Action)),
				attribute.Bool("success", result.Success),
			))
			s.metrics.CommandDuration.Record(ctx, time.Since(start).Seconds())
		}
	}()

	d := s.interp.Parse(ctx, command)
	d = interpreter.Normalize(d, s.now())

	slog.Info("dispatching command", "action", d.Action, "user_id", userID, "confidence", d.Confidence)
	return s.dispatch(ctx, d, userID)
}

func (s *CommandService) dispatch(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	switch d.Action {
	case interpreter.ActionChat:
		return chatReply(d.Message)
	case interpreter.ActionCreate:
		return s.createTask(ctx, d, userID)
	case interpreter.ActionUpdateState:
		return s.updateState(ctx, d, userID)
	case interpreter.ActionUpdateTask:
		return s.updateTask(ctx, d, userID)
	case interpreter.ActionList:
		return s.listTasks(ctx, d, userID)
	case interpreter.ActionDelete:
		return s.deleteTask(ctx, d, userID)
	default:
		return CommandResult{Success: false, Message: replyUnknown}
	}
}

func chatReply(message string) CommandResult {
	switch message {
	case interpreter.MessageGreeting:
		return CommandResult{Success: true, Message: replyGreeting}
	case interpreter.MessageHelp:
		return CommandResult{Success: true, Message: replyHelp}
	default:
		return CommandResult{Success: true, Message: replyGeneral}
	}
}

func (s *CommandService) createTask(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	title := strings.TrimSpace(d.TaskTitle)
	if title == "" {
		return CommandResult{Success: false, Message: "Please provide a task title."}
	}

	req := task.CreateRequest{
		Title:         title,
		Description:   d.Description,
		Priority:      task.Priority(d.Priority),
		Category:      d.Category,
		ScheduledDate: d.ScheduledDate,
		ScheduledTime: d.ScheduledTime,
		DueDate:       d.DueDate,
		DueTime:       d.DueTime,
		ReminderTime:  d.ReminderTime,
	}

	t, err := s.tasks.Create(ctx, req, userID)
	if err != nil {
		slog.Error("command create failed", "title", title, "error", err)
		return CommandResult{Success: false, Message: fmt.Sprintf("Failed to create task: %v", err)}
	}

	parts := []string{fmt.Sprintf("Created task: '%s'", t.Title)}
	if t.ScheduledDate != "" {
		p := "📅 Scheduled for " + t.ScheduledDate
		if t.ScheduledTime != "" {
			p += " at " + t.ScheduledTime
		}
		parts = append(parts, p)
	}
	if t.DueDate != "" {
		p := "⏰ Due " + t.DueDate
		if t.DueTime != "" {
			p += " at " + t.DueTime
		}
		parts = append(parts, p)
	}
	if t.Priority != task.PriorityMedium {
		parts = append(parts, fmt.Sprintf("🔥 Priority: %s", t.Priority))
	}
	if t.ReminderTime != nil {
		parts = append(parts, fmt.Sprintf("🔔 Reminder: %d minutes before due", *t.ReminderTime))
	}

	return CommandResult{
		Success: true,
		Message: strings.Join(parts, "\n"),
		Action:  interpreter.ActionCreate,
		TaskID:  t.ID,
	}
}

// resolveTask maps a fuzzy title onto exactly one of the user's tasks.
// Zero or multiple matches produce a failure result telling the user what
// to do; the bool reports whether resolution succeeded.
func (s *CommandService) resolveTask(ctx context.Context, title, userID string) (*task.Task, CommandResult, bool) {
	matches, err := s.tasks.SearchByTitle(ctx, title, userID)
	if err != nil {
		return nil, CommandResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}, false
	}

	if len(matches) == 0 {
		return nil, CommandResult{Success: false, Message: fmt.Sprintf("No tasks found matching '%s'", title)}, false
	}

	if len(matches) > 1 {
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = m.Title
		}
		return nil, CommandResult{
			Success: false,
			Message: fmt.Sprintf("Multiple tasks found: %s. Please be more specific.", strings.Join(titles, ", ")),
		}, false
	}

	return &matches[0], CommandResult{}, true
}

func (s *CommandService) updateState(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	title := strings.TrimSpace(d.TaskTitle)
	if title == "" {
		return CommandResult{Success: false, Message: "Please specify which task to update."}
	}

	t, failure, ok := s.resolveTask(ctx, title, userID)
	if !ok {
		return failure
	}

	newState, err := task.ParseState(d.NewState)
	if err != nil {
		return CommandResult{Success: false, Message: fmt.Sprintf("Invalid state: %s", d.NewState)}
	}

	updated, err := s.tasks.Update(ctx, t.ID, task.UpdateRequest{State: &newState}, userID)
	if err != nil {
		return CommandResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}

	return CommandResult{
		Success: true,
		Message: fmt.Sprintf("Updated '%s' to '%s'", t.Title, newState),
		Action:  interpreter.ActionUpdateState,
		TaskID:  updated.ID,
	}
}

func (s *CommandService) updateTask(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	title := strings.TrimSpace(d.TaskTitle)
	if title == "" {
		return CommandResult{Success: false, Message: "Please specify which task to update."}
	}

	t, failure, ok := s.resolveTask(ctx, title, userID)
	if !ok {
		return failure
	}

	var req task.UpdateRequest
	if d.NewTitle != "" {
		req.Title = &d.NewTitle
	}
	if d.NewDescription != "" {
		req.Description = &d.NewDescription
	}
	if d.Priority != "" {
		p := task.Priority(d.Priority)
		req.Priority = &p
	}
	if d.Category != "" {
		req.Category = &d.Category
	}
	if d.ScheduledDate != "" {
		req.ScheduledDate = &d.ScheduledDate
	}
	if d.ScheduledTime != "" {
		req.ScheduledTime = &d.ScheduledTime
	}
	if d.DueDate != "" {
		req.DueDate = &d.DueDate
	}
	if d.DueTime != "" {
		req.DueTime = &d.DueTime
	}
	if d.ReminderTime != nil {
		req.ReminderTime = d.ReminderTime
	}

	if req == (task.UpdateRequest{}) {
		return CommandResult{Success: false, Message: "Please specify what to change."}
	}

	updated, err := s.tasks.Update(ctx, t.ID, req, userID)
	if err != nil {
		return CommandResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}

	return CommandResult{
		Success: true,
		Message: fmt.Sprintf("Updated task: '%s'", updated.Title),
		Action:  interpreter.ActionUpdateTask,
		TaskID:  updated.ID,
	}
}

func (s *CommandService) listTasks(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	var statePtr *task.State
	if d.StateFilter != "" {
		st, err := task.ParseState(d.StateFilter)
		if err != nil {
			return CommandResult{Success: false, Message: fmt.Sprintf("Invalid state filter: %s", d.StateFilter)}
		}
		statePtr = &st
	}

	tasks, err := s.tasks.List(ctx, userID, statePtr)
	if err != nil {
		return CommandResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}

	filterMsg := ""
	if d.StateFilter != "" {
		filterMsg = fmt.Sprintf(" in state '%s'", d.StateFilter)
	}

	if len(tasks) == 0 {
		return CommandResult{
			Success: true,
			Message: "No tasks found" + filterMsg,
			Action:  interpreter.ActionList,
		}
	}

	return CommandResult{
		Success: true,
		Message: fmt.Sprintf("Found %d task(s)%s", len(tasks), filterMsg),
		Action:  interpreter.ActionList,
		Tasks:   tasks,
	}
}

func (s *CommandService) deleteTask(ctx context.Context, d interpreter.Descriptor, userID string) CommandResult {
	title := strings.TrimSpace(d.TaskTitle)
	if title == "" {
		return CommandResult{Success: false, Message: "Please specify which task to delete."}
	}

	t, failure, ok := s.resolveTask(ctx, title, userID)
	if !ok {
		return failure
	}

	if err := s.tasks.Delete(ctx, t.ID, userID); err != nil {
		return CommandResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}

	return CommandResult{
		Success: true,
		Message: fmt.Sprintf("Deleted task: '%s'", t.Title),
		Action:  interpreter.ActionDelete,
		TaskID:  t.ID,
	}
}
