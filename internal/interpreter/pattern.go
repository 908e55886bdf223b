package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PatternInterpreter is the deterministic keyword/regex fallback parser.
// It is total: every input yields a descriptor, worst case chat/unclear.
//
// Rule order is a deliberate priority, not incidental: exact greetings win
// over everything, scheduling phrasing wins over listing phrasing, and the
// task-keyword screen routes small talk to chat before the create/update/
// delete heuristics run.
type PatternInterpreter struct {
	now func() time.Time // for testing
}

// NewPatternInterpreter creates a pattern interpreter using the wall clock
// to resolve "today"/"tomorrow".
func NewPatternInterpreter() *PatternInterpreter {
	return &PatternInterpreter{now: time.Now}
}

var greetings = map[string]bool{
	"hi":             true,
	"hello":          true,
	"hey":            true,
	"good morning":   true,
	"good afternoon": true,
	"good evening":   true,
}

var helpPhrases = []string{"help", "what can you do", "how do you work", "commands"}

var schedulingKeywords = []string{"schedule", "plan", "appointment", "meeting", "remind", "at", "on", "book"}

var listingKeywords = []string{"show", "list", "what's", "schedule", "agenda", "today", "tomorrow", "view"}

var taskKeywords = []string{
	"add", "create", "new", "make", "start", "begin", "complete", "finish",
	"done", "delete", "remove", "show", "list", "view", "see", "task",
	"todo", "schedule", "plan",
}

// Title extraction for scheduling commands, first match wins.
var scheduleTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:schedule|plan|book) (.+?) (?:at|on|for|tomorrow|today)`),
	regexp.MustCompile(`remind me to (.+?)(?:\s+at|\s+on|\s+for|\s+tomorrow|\s+today|$)`),
	regexp.MustCompile(`(?:schedule|plan|remind me to|book) (.+)`),
}

var scheduleWordStrip = regexp.MustCompile(`\b(schedule|plan|remind me to|book|at|on|for)\b`)

var (
	clockAmPmPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)?`)
	hourAmPmPattern  = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
)

// Named times recognized inside scheduling commands, in priority order.
var scheduleNamedTimes = []struct {
	word  string
	clock string
}{
	{"morning", "09:00"},
	{"afternoon", "14:00"},
	{"evening", "18:00"},
	{"night", "20:00"},
}

var (
	createPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:add|create|new|make)\s+(?:a\s+)?(?:task\s+)?(?:to\s+)?(.+)`),
		regexp.MustCompile(`(.+)\s+(?:task|todo)`),
	}
	createKeywords = []string{"add", "create", "new", "make"}

	startPattern    = regexp.MustCompile(`(?:start|begin|working on)\s+(.+?)(?:\s+task)?$`)
	completePattern = regexp.MustCompile(`(?:complete|finish|mark\s+(?:as\s+)?(?:completed|done)|done)\s+(.+?)(?:\s+task)?$`)
	deletePattern   = regexp.MustCompile(`(?:delete|remove)\s+(.+?)(?:\s+task)?$`)
)

// Parse maps free text onto a raw descriptor. It never fails and the same
// input always yields the same descriptor (modulo the current date for
// "today"/"tomorrow" resolution).
func (p *PatternInterpreter) Parse(text string) Descriptor {
	cmd := strings.ToLower(strings.TrimSpace(text))

	if greetings[cmd] {
		return Descriptor{Action: ActionChat, Message: MessageGreeting, Confidence: 0.9}
	}

	if containsAny(cmd, helpPhrases) {
		return Descriptor{Action: ActionChat, Message: MessageHelp, Confidence: 0.9}
	}

	if containsAny(cmd, schedulingKeywords) {
		return p.parseSchedule(cmd)
	}

	if containsAny(cmd, listingKeywords) {
		return p.parseList(cmd)
	}

	if !containsAny(cmd, taskKeywords) {
		return Descriptor{Action: ActionChat, Message: MessageGeneral, Confidence: 0.8}
	}

	if containsAny(cmd, createKeywords) {
		for _, re := range createPatterns {
			if m := re.FindStringSubmatch(cmd); m != nil {
				return Descriptor{
					Action:     ActionCreate,
					TaskTitle:  strings.TrimSpace(m[1]),
					Confidence: 0.8,
				}
			}
		}
	}

	if containsAny(cmd, []string{"start", "begin", "working"}) {
		if m := startPattern.FindStringSubmatch(cmd); m != nil {
			return Descriptor{
				Action:     ActionUpdateState,
				TaskTitle:  strings.TrimSpace(m[1]),
				NewState:   "In Progress",
				Confidence: 0.9,
			}
		}
	}

	if containsAny(cmd, []string{"complete", "finish", "done"}) {
		if m := completePattern.FindStringSubmatch(cmd); m != nil {
			return Descriptor{
				Action:     ActionUpdateState,
				TaskTitle:  strings.TrimSpace(m[1]),
				NewState:   "Completed",
				Confidence: 0.9,
			}
		}
	}

	if m := deletePattern.FindStringSubmatch(cmd); m != nil {
		return Descriptor{
			Action:     ActionDelete,
			TaskTitle:  strings.TrimSpace(m[1]),
			Confidence: 0.8,
		}
	}

	return Descriptor{Action: ActionChat, Message: MessageUnclear, Confidence: 0.5}
}

// parseSchedule builds a create descriptor from scheduling phrasing.
func (p *PatternInterpreter) parseSchedule(cmd string) Descriptor {
	d := Descriptor{Action: ActionCreate, Confidence: 0.8}

	for _, re := range scheduleTitlePatterns {
		if m := re.FindStringSubmatch(cmd); m != nil {
			d.TaskTitle = strings.TrimSpace(m[1])
			break
		}
	}
	if d.TaskTitle == "" {
		title := strings.TrimSpace(scheduleWordStrip.ReplaceAllString(cmd, ""))
		title = strings.Join(strings.Fields(title), " ")
		if title == "" {
			title = "Scheduled task"
		}
		d.TaskTitle = title
	}

	d.DueTime = extractClock(cmd)

	today := p.now()
	if strings.Contains(cmd, "today") {
		d.DueDate = today.Format(isoDate)
	} else if strings.Contains(cmd, "tomorrow") {
		d.DueDate = today.AddDate(0, 0, 1).Format(isoDate)
	}

	switch {
	case containsAny(cmd, []string{"urgent", "asap", "immediately"}):
		d.Priority = "URGENT"
	case containsAny(cmd, []string{"important", "high"}):
		d.Priority = "HIGH"
	case containsAny(cmd, []string{"low", "minor"}):
		d.Priority = "LOW"
	default:
		d.Priority = "MEDIUM"
	}

	if strings.Contains(cmd, "remind") {
		reminder := 15 // default: 15 minutes before due
		d.ReminderTime = &reminder
	}

	return d
}

// parseList builds a list descriptor with optional date and state filters.
func (p *PatternInterpreter) parseList(cmd string) Descriptor {
	d := Descriptor{Action: ActionList, Confidence: 0.8}

	today := p.now()
	if strings.Contains(cmd, "today") {
		d.DateFilter = today.Format(isoDate)
	} else if strings.Contains(cmd, "tomorrow") {
		d.DateFilter = today.AddDate(0, 0, 1).Format(isoDate)
	}

	switch {
	case strings.Contains(cmd, "completed"):
		d.StateFilter = "Completed"
	case strings.Contains(cmd, "progress"):
		d.StateFilter = "In Progress"
	case strings.Contains(cmd, "pending") || strings.Contains(cmd, "not started"):
		d.StateFilter = "Not Started"
	}

	return d
}

// extractClock finds the first time expression in cmd and returns it as
// 24-hour HH:MM, or "" when none is present. Explicit H:MM beats bare-hour
// am/pm, which beats named times of day.
func extractClock(cmd string) string {
	if m := clockAmPmPattern.FindStringSubmatch(cmd); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", toClock24(hour, m[3]), minute)
	}

	if m := hourAmPmPattern.FindStringSubmatch(cmd); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:00", toClock24(hour, m[2]))
	}

	for _, nt := range scheduleNamedTimes {
		if strings.Contains(cmd, nt.word) {
			return nt.clock
		}
	}

	return ""
}

// toClock24 applies am/pm rollover: pm adds 12 unless the hour already is
// 12, and 12am becomes 0.
func toClock24(hour int, ampm string) int {
	switch {
	case ampm == "pm" && hour < 12:
		return hour + 12
	case ampm == "am" && hour == 12:
		return 0
	}
	return hour
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
