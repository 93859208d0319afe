package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session is a training-programme instance over a date range.
type Session struct {
	ID              int64  `json:"id"`
	Nom             string `json:"nom"`
	DateDebut       string `json:"date_debut"`
	DateFin         string `json:"date_fin"`
	FormationRNCPID string `json:"formation_rncp_id,omitempty"`
}

// SessionCreate is the body of POST /sessions/.
type SessionCreate struct {
	Nom             string `json:"nom"`
	DateDebut       string `json:"date_debut"`
	DateFin         string `json:"date_fin"`
	FormationRNCPID string `json:"formation_rncp_id,omitempty"`
}

func (s SessionCreate) Validate() error {
	if strings.TrimSpace(s.Nom) == "" {
		return fmt.Errorf("%w: nom is required", ErrInvalidInput)
	}
	if s.DateDebut == "" || s.DateFin == "" {
		return fmt.Errorf("%w: date_debut and date_fin are required", ErrInvalidInput)
	}
	return nil
}

// SessionDay is one generated calendar day of a session.
type SessionDay struct {
	ID          int64  `json:"id"`
	SessionID   int64  `json:"session_id,omitempty"`
	Date        string `json:"date"`
	IsMorning   bool   `json:"is_morning"`
	IsAfternoon bool   `json:"is_afternoon"`
}

// Hours is the nominal training time of the day: 3.5h per half day.
func (d SessionDay) Hours() float64 {
	var h float64
	if d.IsMorning {
		h += 3.5
	}
	if d.IsAfternoon {
		h += 3.5
	}
	return h
}

// Weekday numbers days the way the backend does: 0=Monday … 6=Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays lists Monday to Sunday.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [...]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf converts a Go weekday (Sunday=0) into the backend numbering.
func WeekdayOf(t time.Weekday) Weekday {
	return Weekday((int(t) + 6) % 7)
}

// ParseWeekday accepts a number 0..6 or a French day name.
func ParseWeekday(raw string) (Weekday, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		d := Weekday(n)
		if !d.Valid() {
			return 0, fmt.Errorf("%w: %s", ErrUnknownWeekday, raw)
		}
		return d, nil
	}
	for i, name := range weekdayNames {
		if strings.EqualFold(name, raw) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, raw)
}

// WeekdaySet is an immutable selection of weekdays.
type WeekdaySet uint8

// NewWeekdaySet builds a set from days; invalid days are rejected.
func NewWeekdaySet(days ...Weekday) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if !d.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrUnknownWeekday, int(d))
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

// Toggle adds d when absent and removes it when present.
func (s WeekdaySet) Toggle(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s ^ (1 << uint(d))
}

func (s WeekdaySet) Has(d Weekday) bool {
	return d.Valid() && s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Len() int {
	n := 0
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days returns the selected days in ascending order, never nil.
func (s WeekdaySet) Days() []Weekday {
	out := make([]Weekday, 0, 7)
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var days []Weekday
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	set, err := NewWeekdaySet(days...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// CalendarGenerate is the body of POST /sessions/{id}/generate-calendar.
type CalendarGenerate struct {
	DaysOfWeek WeekdaySet `json:"days_of_week"`
}
