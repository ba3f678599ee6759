package conversation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const VisitTimeLayout = "02/01/2006 15:04"

var (
	ErrVisitTimeFormat  = errors.New("visit time must be DD/MM/AAAA HH:MM")
	ErrVisitTimeInvalid = errors.New("visit time is not a real date")
	ErrVisitTimePast    = errors.New("visit time is in the past")
)

var visitTimePattern = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\s+(\d{1,2})[:.](\d{2})$`)

// ParseVisitTime reads "DD/MM/YYYY HH:MM" (also "-" or "." as date separator,
// single-digit day, month and hour) in loc and rejects dates before now.
func ParseVisitTime(text string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	m := visitTimePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, ErrVisitTimeFormat
	}

	var n [5]int
	for i := range n {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, ErrVisitTimeFormat
		}
		n[i] = v
	}
	day, month, year, hour, minute := n[0], n[1], n[2], n[3], n[4]

	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, ErrVisitTimeInvalid
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// time.Date normalises 31/02 into March
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, ErrVisitTimeInvalid
	}
	if t.Before(now) {
		return time.Time{}, ErrVisitTimePast
	}
	return t, nil
}
