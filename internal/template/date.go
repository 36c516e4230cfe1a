package template

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ledger-core/internal/domain"
)

// ComposeDate assembles the draft date. The year comes from its group, else
// its static value, else composition fails. Month and day fall back further
// to today's. The result must be a real calendar date.
func ComposeDate(m Match, t domain.Template, today civil.Date) (civil.Date, bool) {
	year, ok := component(m, t.Year, parseYear)
	if !ok || year == nil {
		return civil.Date{}, false
	}

	month, ok := component(m, t.Month, parseMonth)
	if !ok {
		return civil.Date{}, false
	}
	if month == nil {
		v := int(today.Month)
		month = &v
	}

	day, ok := component(m, t.Day, parseDay)
	if !ok {
		return civil.Date{}, false
	}
	if day == nil {
		v := today.Day
		day = &v
	}

	d := civil.Date{Year: *year, Month: time.Month(*month), Day: *day}
	if !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}

// component resolves a number source. A nil value with ok means the source
// is unset; ok is false when captured text cannot be parsed.
func component(m Match, src domain.NumberSource, parse func(string) (int, bool)) (*int, bool) {
	if src.HasGroup() {
		if text, found := m.Group(src.Group); found {
			v, ok := parse(strings.TrimSpace(text))
			if !ok {
				return nil, false
			}
			return &v, true
		}
	}
	if src.Value != nil {
		v := *src.Value
		return &v, true
	}
	return nil, true
}

func parseYear(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	if len(s) == 2 {
		v += 2000
	}
	return v, true
}

func parseMonth(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, v >= 1 && v <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || (len(s) <= len(name) && strings.EqualFold(s, name[:len(s)])) {
			return int(m), true
		}
	}
	return 0, false
}

func parseDay(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, v >= 1 && v <= 31
}
