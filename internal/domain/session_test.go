package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWeekdaySetToggle(t *testing.T) {
	t.Parallel()

	var s WeekdaySet
	s = s.Toggle(Wednesday).Toggle(Monday)
	if !s.Has(Monday) || !s.Has(Wednesday) || s.Len() != 2 {
		t.Fatalf("unexpected set: %v", s.Days())
	}
	s = s.Toggle(Monday)
	if s.Has(Monday) || s.Len() != 1 {
		t.Fatalf("toggle did not remove Monday: %v", s.Days())
	}
	if got := s.Toggle(Weekday(9)); got != s {
		t.Fatal("invalid weekday should be ignored")
	}
}

func TestCalendarGenerateWireFormat(t *testing.T) {
	t.Parallel()

	set, err := NewWeekdaySet(Friday, Monday)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(CalendarGenerate{DaysOfWeek: set})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"days_of_week":[0,4]}` {
		t.Fatalf("unexpected body %s", data)
	}

	data, _ = json.Marshal(CalendarGenerate{})
	if string(data) != `{"days_of_week":[]}` {
		t.Fatalf("empty selection must encode as [], got %s", data)
	}

	var back CalendarGenerate
	if err := json.Unmarshal([]byte(`{"days_of_week":[7]}`), &back); !errors.Is(err, ErrUnknownWeekday) {
		t.Fatalf("expected ErrUnknownWeekday, got %v", err)
	}
}

func TestWeekdayConversions(t *testing.T) {
	t.Parallel()

	if WeekdayOf(time.Sunday) != Sunday || WeekdayOf(time.Monday) != Monday {
		t.Fatal("WeekdayOf mismatch")
	}
	for raw, want := range map[string]Weekday{"0": Monday, "6": Sunday, "mercredi": Wednesday, "Vendredi": Friday} {
		got, err := ParseWeekday(raw)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"7", "-1", "funday"} {
		if _, err := ParseWeekday(raw); !errors.Is(err, ErrUnknownWeekday) {
			t.Fatalf("ParseWeekday(%q) expected error, got %v", raw, err)
		}
	}
}

func TestSessionDayHours(t *testing.T) {
	t.Parallel()

	if h := (SessionDay{IsMorning: true, IsAfternoon: true}).Hours(); h != 7 {
		t.Fatalf("full day = %v", h)
	}
	if h := (SessionDay{IsMorning: true}).Hours(); h != 3.5 {
		t.Fatalf("half day = %v", h)
	}
}
