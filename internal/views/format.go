package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
)

const (
	nbsp       = "\u00a0"
	narrowNbsp = "\u202f"
)

var (
	frMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
	frDays   = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}
)

// FormatDate renders an ISO date for display. Only the calendar date is
// used; no timezone conversion happens. Unparsable input is returned as-is.
func FormatDate(lang, iso string) string {
	t, ok := parseISODate(iso)
	if !ok {
		return iso
	}
	if i18n.DetectLanguage(lang) == "en" {
		return t.Format("01/02/2006")
	}
	return t.Format("02/01/2006")
}

func parseISODate(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if len(iso) < len(time.DateOnly) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, iso[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatEUR renders an amount in euros: "1 500,00 €" in French (with the
// no-break spaces Intl uses) and "€1,500.00" in English.
func FormatEUR(lang string, amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	if i18n.DetectLanguage(lang) == "en" {
		s := "€" + group(intPart, ",") + "." + frac
		if neg {
			s = "-" + s
		}
		return s
	}
	s := group(intPart, narrowNbsp) + "," + frac + nbsp + "€"
	if neg {
		s = "-" + s
	}
	return s
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a rate already expressed in percent.
func FormatPercent(lang string, rate float64) string {
	s := fmt.Sprintf("%.1f", rate)
	if i18n.DetectLanguage(lang) == "en" {
		return s + "%"
	}
	return strings.Replace(s, ".", ",", 1) + nbsp + "%"
}

// MonthGroup is one month of a calendar listing.
type MonthGroup struct {
	Label string
	Days  []DayLine
}

// DayLine is one training day as displayed.
type DayLine struct {
	Weekday string
	Day     string
	Hours   float64
	Date    string
}

// GroupByMonth groups calendar days by month in the order given.
func GroupByMonth(lang string, days []domain.SessionDay) []MonthGroup {
	en := i18n.DetectLanguage(lang) == "en"
	var out []MonthGroup
	for _, d := range days {
		t, ok := parseISODate(d.Date)
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s %d", frMonths[t.Month()-1], t.Year())
		wd := frDays[t.Weekday()]
		if en {
			label = t.Format("January 2006")
			wd = t.Format("Mon")
		}
		if len(out) == 0 || out[len(out)-1].Label != label {
			out = append(out, MonthGroup{Label: label})
		}
		g := &out[len(out)-1]
		g.Days = append(g.Days, DayLine{Weekday: wd, Day: t.Format("02"), Hours: d.Hours(), Date: d.Date})
	}
	return out
}
