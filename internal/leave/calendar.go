package leave

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWeekend is Saturday and Sunday.
var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

// Calendar answers business-day and blackout questions for one tenant.
type Calendar struct {
	weekend   map[time.Weekday]bool
	holidays  map[string]string
	blackouts []Blackout
}

func NewCalendar(weekend []time.Weekday, holidays []Holiday, blackouts []Blackout) *Calendar {
	c := &Calendar{
		weekend:   make(map[time.Weekday]bool, len(weekend)),
		holidays:  make(map[string]string, len(holidays)),
		blackouts: blackouts,
	}
	for _, wd := range weekend {
		c.weekend[wd] = true
	}
	for _, h := range holidays {
		c.holidays[h.Date.String()] = h.Name
	}
	return c
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (c *Calendar) IsWeekend(d Date) bool {
	return c.weekend[d.Weekday()]
}

// Holiday returns the holiday name for d, if any.
func (c *Calendar) Holiday(d Date) (string, bool) {
	name, ok := c.holidays[d.String()]
	return name, ok
}

func (c *Calendar) IsBusinessDay(d Date) bool {
	if c.IsWeekend(d) {
		return false
	}
	_, holiday := c.Holiday(d)
	return !holiday
}

// BusinessDays returns the business days in [start, end].
func (c *Calendar) BusinessDays(start, end Date) []Date {
	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if c.IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// CheckBlackout fails if any day in [start, end] falls inside a blackout that
// applies to leaveTypeID.
func (c *Calendar) CheckBlackout(leaveTypeID string, start, end Date) error {
	for _, b := range c.blackouts {
		if !b.Applies(leaveTypeID) {
			continue
		}
		if start.After(b.End) || end.Before(b.Start) {
			continue
		}
		return fmt.Errorf("%w: %s (%s to %s)", ErrBlackout, b.Reason, b.Start, b.End)
	}
	return nil
}
