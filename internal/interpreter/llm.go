package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/kaptinlin/jsonrepair"

	dpotel "github.com/dayplanhq/dayplan/internal/adapter/otel"
	"github.com/dayplanhq/dayplan/internal/port/textgen"
)

// LLMInterpreter parses commands with a text generation model and falls back
// to the pattern interpreter whenever the model path fails for any reason:
// no generator configured, transport error, or undecodable output. Parse
// therefore never fails.
type LLMInterpreter struct {
	gen     textgen.Generator
	pattern *PatternInterpreter
	log     *slog.Logger
	metrics *dpotel.Metrics
	model   string

	now func() time.Time // for testing
}

// NewLLMInterpreter creates an interpreter backed by gen. A nil gen is
// valid and means every command goes straight to pattern parsing.
func NewLLMInterpreter(gen textgen.Generator, pattern *PatternInterpreter, log *slog.Logger, metrics *dpotel.Metrics, model string) *LLMInterpreter {
	return &LLMInterpreter{
		gen:     gen,
		pattern: pattern,
		log:     log,
		metrics: metrics,
		model:   model,
		now:     time.Now,
	}
}

// Parse maps free text onto a raw descriptor. The result still needs to go
// through Normalize before it reaches the dispatcher.
func (i *LLMInterpreter) Parse(ctx context.Context, text string) Descriptor {
	if i.gen == nil {
		return i.pattern.Parse(text)
	}

	d, err := i.parseWithModel(ctx, text)
	if err != nil {
		i.log.Warn("model parse failed, falling back to pattern parsing", "error", err)
		if i.metrics != nil {
			i.metrics.ParseFallbacks.Add(ctx, 1)
		}
		return i.pattern.Parse(text)
	}
	return d
}

func (i *LLMInterpreter) parseWithModel(ctx context.Context, text string) (Descriptor, error) {
	ctx, span := dpotel.StartInterpretSpan(ctx, i.model)
	defer span.End()

	today := i.now()
	prompt := buildParsePrompt(sanitizePromptInput(text), today, today.AddDate(0, 0, 1))

	raw, err := i.gen.Generate(ctx, prompt)
	if err != nil {
		return Descriptor{}, fmt.Errorf("generate: %w", err)
	}

	return decodeDescriptor(raw)
}

// decodeDescriptor turns raw model output into a descriptor. Model JSON is
// not trusted: fields may carry the wrong type, reminder_time may come back
// as a string, and the object may arrive with trailing commas or unquoted
// keys. Wrong-typed fields degrade to absent rather than failing the parse;
// malformed JSON gets one repair attempt before giving up.
func decodeDescriptor(raw string) (Descriptor, error) {
	text := extractJSON(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return Descriptor{}, fmt.Errorf("decode model output: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
			return Descriptor{}, fmt.Errorf("decode repaired model output: %w", err)
		}
	}

	action := stringField(fields, "action")
	if action == "" {
		return Descriptor{}, fmt.Errorf("model output has no action")
	}

	return Descriptor{
		Action:         Action(action),
		TaskTitle:      stringField(fields, "task_title"),
		NewState:       stringField(fields, "new_state"),
		NewTitle:       stringField(fields, "new_title"),
		NewDescription: stringField(fields, "new_description"),
		Description:    stringField(fields, "description"),
		ScheduledDate:  stringField(fields, "scheduled_date"),
		ScheduledTime:  stringField(fields, "scheduled_time"),
		DueDate:        stringField(fields, "due_date"),
		DueTime:        stringField(fields, "due_time"),
		ReminderTime:   intField(fields, "reminder_time"),
		Priority:       stringField(fields, "priority"),
		Category:       stringField(fields, "category"),
		DateFilter:     stringField(fields, "date_filter"),
		StateFilter:    stringField(fields, "state_filter"),
		CategoryFilter: stringField(fields, "category_filter"),
		Message:        stringField(fields, "message"),
		Confidence:     floatField(fields, "confidence"),
	}, nil
}

func buildParsePrompt(command string, today, tomorrow time.Time) string {
	td := today.Format(isoDate)
	tm := tomorrow.Format(isoDate)

	var b strings.Builder
	fmt.Fprintf(&b, `You are a personal day planner assistant. Parse this task management command into a JSON structure.
Today's date is %s.

The system supports these actions:
- create: Create a new task with scheduling
- update_state: Change task state (Not Started -> In Progress -> Completed)
- update_task: Update task details including schedule
- delete: Delete a task
- list: Show tasks (optionally filtered by state, date, or category)
- chat: Respond conversationally for greetings, help, or general questions

Available states: "Not Started", "In Progress", "Completed"
Available priorities: "LOW", "MEDIUM", "HIGH", "URGENT" (always uppercase)

For dates, convert relative terms to actual dates:
- "today" -> "%s"
- "tomorrow" -> "%s"
- For specific dates like "Monday", "next Friday", calculate the actual date
- Use format YYYY-MM-DD (example: "%s")

For times, use 24-hour format HH:MM (example: "15:00" for 3 PM)

Examples:
- "Schedule meeting tomorrow at 3pm" -> {"action": "create", "task_title": "meeting", "due_date": "%s", "due_time": "15:00"}
- "Remind me to call John today" -> {"action": "create", "task_title": "call John", "due_date": "%s"}
- "Add high priority work task for next Monday" -> {"action": "create", "task_title": "work task", "priority": "HIGH", "category": "Work"}

Command: "%s"

IMPORTANT:
- For dates, use ACTUAL dates like "%s" or "%s", NOT format strings like "YYYY-MM-DD"
- For times, use actual times like "15:00", NOT format strings like "HH:MM"
- Only include fields that are relevant to the command

Respond with JSON only:
{
    "action": "create|update_state|update_task|delete|list|chat",
    "task_title": "title if creating or identifying task",
    "scheduled_date": "actual date like %s if scheduling start date",
    "scheduled_time": "actual time like 15:00 if scheduling start time",
    "due_date": "actual date like %s if setting due date",
    "due_time": "actual time like 15:00 if setting due time",
    "reminder_time": 15,
    "priority": "LOW|MEDIUM|HIGH|URGENT",
    "category": "Work|Personal|Study|Health|Finance|Shopping|Travel|Social|Household|Other",
    "new_state": "state if updating state",
    "new_title": "new title if updating task",
    "new_description": "new description if updating task",
    "date_filter": "actual date if filtering by date",
    "state_filter": "state if filtering list",
    "category_filter": "category if filtering by category",
    "message": "conversational response for chat action",
    "confidence": 0.8
}`, td, td, tm, td, tm, td, command, td, tm, td, td)

	return b.String()
}

// sanitizePromptInput strips control characters and common prompt injection
// role markers from user-supplied text before it is embedded in the parse
// prompt, so a command cannot pose as a system instruction.
func sanitizePromptInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.ToLower(line))
		for _, prefix := range []string{
			"system:", "assistant:", "user:", "[system]", "[assistant]",
			"<|system|>", "<|assistant|>", "<|im_start|>",
			"### system", "### assistant", "### instruction",
		} {
			if strings.HasPrefix(trimmed, prefix) {
				lines[i] = "[sanitized] " + line
				break
			}
		}
	}
	s = strings.Join(lines, "\n")

	// Commands are single sentences; anything near this limit is not one.
	const maxInputLen = 4000
	if len(s) > maxInputLen {
		s = s[:maxInputLen] + "\n[truncated]"
	}

	return s
}

// extractJSON pulls a JSON object out of model output that may be wrapped
// in markdown fences or surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}

	return s
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intField reads a numeric field that models sometimes emit as a string.
// Zero and negative values count as absent.
func intField(m map[string]any, key string) *int {
	var n int
	switch v := m[key].(type) {
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
