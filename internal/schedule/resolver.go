package schedule

import "time"

// ActivePoint returns the point in effect at now.
//
// The latest point not after now wins. When now is earlier than every
// point, the latest point of the schedule is still running from the
// previous day. Equal times resolve to the point parsed first. The second
// result is false only for an empty schedule.
func ActivePoint(s Schedule, now TimeOfDay) (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}

	nowMin := now.Minutes()
	best := -1
	bestMin := -1
	for i, pt := range s {
		m := pt.At.Minutes()
		if m <= nowMin && m > bestMin {
			best, bestMin = i, m
		}
	}
	if best >= 0 {
		return s[best], true
	}

	// wrap around to yesterday's last point
	best, bestMin = 0, s[0].At.Minutes()
	for i := 1; i < len(s); i++ {
		if m := s[i].At.Minutes(); m > bestMin {
			best, bestMin = i, m
		}
	}
	return s[best], true
}

// Resolve returns the target temperature in effect at now, or fallback when
// the schedule is empty.
func Resolve(s Schedule, now TimeOfDay, fallback float64) float64 {
	pt, ok := ActivePoint(s, now)
	if !ok {
		return fallback
	}
	return pt.TempC
}

// ClockOf returns the time of day of t in loc. A nil loc keeps t's location.
func ClockOf(t time.Time, loc *time.Location) TimeOfDay {
	if loc != nil {
		t = t.In(loc)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}
