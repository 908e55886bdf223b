package interpreter

import (
	"testing"
	"time"
)

var normNow = time.Date(2026, 2, 8, 10, 30, 0, 0, time.UTC)

func TestNormalizePriority(t *testing.T) {
	cases := map[string]string{
		"low":      "LOW",
		"Medium":   "MEDIUM",
		"HIGH":     "HIGH",
		"uRgEnT":   "URGENT",
		"whenever": "whenever", // unrecognized passes through
	}
	for in, want := range cases {
		got := Normalize(Descriptor{Priority: in}, normNow)
		if got.Priority != want {
			t.Errorf("priority %q: got %q, want %q", in, got.Priority, want)
		}
	}
}

func TestNormalizeDates(t *testing.T) {
	cases := map[string]string{
		"today":                "2026-02-08",
		"Tomorrow":             "2026-02-09",
		"yesterday":            "2026-02-07",
		"[tomorrow]":           "2026-02-09",
		"sometime next week":   "2026-02-15",
		"next month":           "2026-03-10",
		"2026-03-01":           "2026-03-01",
		"YYYY-MM-DD":           "", // format placeholder, dropped
		"[yyyy-mm-dd]":         "",
		"yyyy/mm/dd":           "",
		"March 1st":            "", // unparsable, dropped
		"2026-13-45":           "", // not a real date
		"":                     "",
	}
	for in, want := range cases {
		got := Normalize(Descriptor{DueDate: in, ScheduledDate: in, DateFilter: in}, normNow)
		if got.DueDate != want {
			t.Errorf("due_date %q: got %q, want %q", in, got.DueDate, want)
		}
		if got.ScheduledDate != want {
			t.Errorf("scheduled_date %q: got %q, want %q", in, got.ScheduledDate, want)
		}
		if got.DateFilter != want {
			t.Errorf("date_filter %q: got %q, want %q", in, got.DateFilter, want)
		}
	}
}

func TestNormalizeTimes(t *testing.T) {
	cases := map[string]string{
		"morning":   "09:00",
		"Afternoon": "14:00",
		"evening":   "18:00",
		"night":     "20:00",
		"noon":      "12:00",
		"midnight":  "00:00",
		"15:00":     "15:00",
		"9:30":      "9:30",
		"HH:MM":     "", // format placeholder, dropped
		"hh:mm:ss":  "",
		"3pm":       "", // not HH:MM, dropped
		"late":      "",
		"":          "",
	}
	for in, want := range cases {
		got := Normalize(Descriptor{DueTime: in, ScheduledTime: in}, normNow)
		if got.DueTime != want {
			t.Errorf("due_time %q: got %q, want %q", in, got.DueTime, want)
		}
		if got.ScheduledTime != want {
			t.Errorf("scheduled_time %q: got %q, want %q", in, got.ScheduledTime, want)
		}
	}
}

// Normalize must never leave a date/time field holding an unparsable
// literal: after one pass every such field is either valid or empty.
func TestNormalizeTotal(t *testing.T) {
	junk := []string{"??", "soon", "in a bit", "25:99x", "[\t]", "0000", "next", "-"}
	for _, s := range junk {
		got := Normalize(Descriptor{
			DueDate: s, ScheduledDate: s, DateFilter: s,
			DueTime: s, ScheduledTime: s,
		}, normNow)
		for field, v := range map[string]string{
			"due_date": got.DueDate, "scheduled_date": got.ScheduledDate,
			"date_filter": got.DateFilter, "due_time": got.DueTime,
			"scheduled_time": got.ScheduledTime,
		} {
			if v != "" {
				t.Errorf("input %q: %s = %q, want dropped", s, field, v)
			}
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []Descriptor{
		{DueDate: "tomorrow", DueTime: "evening", Priority: "high"},
		{ScheduledDate: "2026-02-08", ScheduledTime: "9:15", Priority: "URGENT"},
		{DateFilter: "next week", DueTime: "garbage", Priority: "nope"},
		{},
	}
	for _, in := range inputs {
		once := Normalize(in, normNow)
		twice := Normalize(once, normNow)
		if once != twice {
			t.Errorf("not idempotent: %+v -> %+v -> %+v", in, once, twice)
		}
	}
}

func TestNormalizeLeavesOtherFieldsAlone(t *testing.T) {
	in := Descriptor{
		Action:    ActionCreate,
		TaskTitle: "Buy [milk] TODAY",
		Category:  "Errands",
		Message:   "greeting",
	}
	got := Normalize(in, normNow)
	if got.TaskTitle != in.TaskTitle || got.Category != in.Category ||
		got.Action != in.Action || got.Message != in.Message {
		t.Errorf("non date/time/priority fields changed: %+v", got)
	}
}
