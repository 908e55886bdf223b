package interpreter

import (
	"testing"
	"time"
)

func testPatternInterpreter() *PatternInterpreter {
	p := NewPatternInterpreter()
	p.now = func() time.Time { return time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestParseGreetingWinsOverKeywords(t *testing.T) {
	p := testPatternInterpreter()

	// Exact-match greeting check precedes the keyword scans, so a bare
	// greeting never becomes a list or create command.
	got := p.Parse("hello")
	want := Descriptor{Action: ActionChat, Message: MessageGreeting, Confidence: 0.9}
	if got != want {
		t.Fatalf("Parse(hello) = %+v, want %+v", got, want)
	}

	for _, text := range []string{"hi", "Hey", "good morning", "GOOD EVENING"} {
		if got := p.Parse(text); got.Action != ActionChat || got.Message != MessageGreeting {
			t.Errorf("Parse(%q) = %+v, want chat/greeting", text, got)
		}
	}
}

func TestParseHelp(t *testing.T) {
	p := testPatternInterpreter()
	for _, text := range []string{"help", "what can you do?", "how do you work"} {
		got := p.Parse(text)
		if got.Action != ActionChat || got.Message != MessageHelp || got.Confidence != 0.9 {
			t.Errorf("Parse(%q) = %+v, want chat/help 0.9", text, got)
		}
	}
}

func TestParseScheduleMeetingTomorrow(t *testing.T) {
	p := testPatternInterpreter()

	got := p.Parse("Schedule meeting tomorrow at 3pm")
	if got.Action != ActionCreate {
		t.Fatalf("action = %q, want create", got.Action)
	}
	if got.TaskTitle != "meeting" {
		t.Errorf("title = %q, want meeting", got.TaskTitle)
	}
	if got.DueTime != "15:00" {
		t.Errorf("due_time = %q, want 15:00", got.DueTime)
	}
	if got.DueDate != "2026-02-09" {
		t.Errorf("due_date = %q, want 2026-02-09 (tomorrow)", got.DueDate)
	}
	if got.Priority != "MEDIUM" {
		t.Errorf("priority = %q, want MEDIUM default", got.Priority)
	}
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got.Confidence)
	}
}

func TestParseRemindMe(t *testing.T) {
	p := testPatternInterpreter()

	got := p.Parse("Remind me to call John today")
	if got.Action != ActionCreate {
		t.Fatalf("action = %q, want create", got.Action)
	}
	if got.TaskTitle != "call john" {
		t.Errorf("title = %q, want call john", got.TaskTitle)
	}
	if got.DueDate != "2026-02-08" {
		t.Errorf("due_date = %q, want today", got.DueDate)
	}
	if got.ReminderTime == nil || *got.ReminderTime != 15 {
		t.Errorf("reminder_time = %v, want 15", got.ReminderTime)
	}
}

func TestParseScheduleTimeForms(t *testing.T) {
	p := testPatternInterpreter()
	cases := map[string]string{
		"schedule standup tomorrow at 9:30am": "09:30",
		"schedule standup tomorrow at 12:15pm": "12:15",
		"schedule review tomorrow at 12am":     "00:00",
		"book dentist appointment at 4pm":      "16:00",
		"plan workout for tomorrow morning":    "09:00",
		"plan dinner for tomorrow evening":     "18:00",
	}
	for text, want := range cases {
		got := p.Parse(text)
		if got.Action != ActionCreate || got.DueTime != want {
			t.Errorf("Parse(%q): action=%q due_time=%q, want create/%s", text, got.Action, got.DueTime, want)
		}
	}
}

func TestParseSchedulePriorities(t *testing.T) {
	p := testPatternInterpreter()
	cases := map[string]string{
		"schedule urgent meeting tomorrow":          "URGENT",
		"schedule asap sync for today":              "URGENT",
		"schedule important review meeting":         "HIGH",
		"schedule low key catchup meeting":          "LOW",
		"schedule meeting with the designers today": "MEDIUM",
	}
	for text, want := range cases {
		if got := p.Parse(text); got.Priority != want {
			t.Errorf("Parse(%q) priority = %q, want %q", text, got.Priority, want)
		}
	}
}

func TestParseScheduleFallbackTitle(t *testing.T) {
	p := testPatternInterpreter()

	// No title pattern matches and stripping scheduling words leaves
	// nothing, so the title falls back to the default.
	got := p.Parse("at on for")
	if got.Action != ActionCreate || got.TaskTitle != "Scheduled task" {
		t.Errorf("Parse = %+v, want create with default title", got)
	}
}

func TestParseList(t *testing.T) {
	p := testPatternInterpreter()

	got := p.Parse("show completed tasks")
	if got.Action != ActionList || got.StateFilter != "Completed" || got.Confidence != 0.8 {
		t.Fatalf("Parse(show completed tasks) = %+v", got)
	}

	got = p.Parse("list tasks in progress")
	if got.Action != ActionList || got.StateFilter != "In Progress" {
		t.Fatalf("Parse(list tasks in progress) = %+v", got)
	}

	got = p.Parse("show pending tasks")
	if got.StateFilter != "Not Started" {
		t.Fatalf("Parse(show pending tasks) = %+v", got)
	}

	got = p.Parse("show today's tasks")
	if got.Action != ActionList || got.DateFilter != "2026-02-08" {
		t.Fatalf("Parse(show today's tasks) = %+v", got)
	}
}

func TestParseCreate(t *testing.T) {
	p := testPatternInterpreter()

	got := p.Parse("add a task to buy groceries")
	if got.Action != ActionCreate || got.TaskTitle != "buy groceries" || got.Confidence != 0.8 {
		t.Fatalf("Parse(add a task to buy groceries) = %+v", got)
	}

	got = p.Parse("create new expense report task")
	if got.Action != ActionCreate {
		t.Fatalf("Parse(create new expense report task) = %+v", got)
	}
}

func TestParseUpdateStateAndDelete(t *testing.T) {
	p := testPatternInterpreter()

	// Task names chosen without scheduling-keyword substrings ("on" is
	// inside words like "presentation" and would route to the scheduling
	// branch, matching the rule order).
	got := p.Parse("start research task")
	if got.Action != ActionUpdateState || got.NewState != "In Progress" || got.TaskTitle != "research" {
		t.Fatalf("Parse(start research task) = %+v", got)
	}
	if got.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", got.Confidence)
	}

	got = p.Parse("finish the research task")
	if got.Action != ActionUpdateState || got.NewState != "Completed" || got.TaskTitle != "the research" {
		t.Fatalf("Parse(finish the research task) = %+v", got)
	}

	// "list" inside the title would hit the listing branch first, so the
	// delete rule only fires for titles without listing keywords.
	got = p.Parse("delete the research task")
	if got.Action != ActionDelete || got.TaskTitle != "the research" || got.Confidence != 0.8 {
		t.Fatalf("Parse(delete the research task) = %+v", got)
	}
}

func TestParseGeneralChat(t *testing.T) {
	p := testPatternInterpreter()

	// No task keyword present: conversational reply. ("how are you" must
	// avoid scheduling/listing keyword substrings too.)
	got := p.Parse("why is the sky blue")
	if got.Action != ActionChat || got.Message != MessageGeneral || got.Confidence != 0.8 {
		t.Fatalf("Parse(why is the sky blue) = %+v", got)
	}
}

func TestParseUnclear(t *testing.T) {
	p := testPatternInterpreter()

	// Contains the bare keyword "task" but matches no actionable rule.
	got := p.Parse("task")
	want := Descriptor{Action: ActionChat, Message: MessageUnclear, Confidence: 0.5}
	if got != want {
		t.Fatalf("Parse(task) = %+v, want %+v", got, want)
	}
}

func TestParseDeterministic(t *testing.T) {
	p := testPatternInterpreter()
	inputs := []string{
		"hello",
		"Schedule meeting tomorrow at 3pm",
		"show completed tasks",
		"delete the research task",
		"gibberish input 42",
	}
	for _, text := range inputs {
		a, b := p.Parse(text), p.Parse(text)
		if a != b {
			t.Errorf("Parse(%q) not deterministic: %+v vs %+v", text, a, b)
		}
		if a.ReminderTime != nil && b.ReminderTime != nil && *a.ReminderTime != *b.ReminderTime {
			t.Errorf("Parse(%q) reminder differs", text)
		}
	}
}
